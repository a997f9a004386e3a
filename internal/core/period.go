package core

import "time"

// Named relative periods understood by ResolvePeriod.
const (
	PeriodThisMonth   = "this-month"
	PeriodLastMonth   = "last-month"
	PeriodThisQuarter = "this-quarter"
	PeriodThisYear    = "this-year"
	PeriodLast30Days  = "last-30-days"
)

// DateRange is a closed calendar-date interval. A zero From or To means
// unbounded on that side.
type DateRange struct {
	From Date
	To   Date
}

// ResolvePeriod maps a named relative period to the concrete date range
// it covers as of now. Unknown or empty tokens resolve to an unbounded
// range rather than an error. The function is pure; callers must pass
// now explicitly and re-resolve at each evaluation, never cache.
func ResolvePeriod(token string, now time.Time) DateRange {
	year, month := now.Year(), int(now.Month())
	switch token {
	case PeriodThisMonth:
		return DateRange{
			From: NewDate(year, month, 1),
			To:   NewDate(year, month+1, 0),
		}
	case PeriodLastMonth:
		return DateRange{
			From: NewDate(year, month-1, 1),
			To:   NewDate(year, month, 0),
		}
	case PeriodThisQuarter:
		start := (month-1)/3*3 + 1
		return DateRange{
			From: NewDate(year, start, 1),
			To:   NewDate(year, start+3, 0),
		}
	case PeriodThisYear:
		return DateRange{
			From: NewDate(year, 1, 1),
			To:   NewDate(year, 12, 31),
		}
	case PeriodLast30Days:
		return DateRange{
			From: DateOf(now.AddDate(0, 0, -30)),
			To:   DateOf(now),
		}
	default:
		return DateRange{}
	}
}
