package core

import (
	"strings"
	"time"
)

// Criteria is the normalized set of active filter inputs. Zero-valued
// fields are inactive and always pass. Amount bounds arrive as the raw
// strings the caller typed; bounds that do not parse as decimals are
// treated as absent, not as a failed match.
type Criteria struct {
	Search               string
	DateFrom             Date
	DateTo               Date
	Period               string
	Category             string
	CounterpartyContains string
	Kind                 Kind
	MinAmount            string
	MaxAmount            string
}

// bounds returns the effective date interval. A named period is
// resolved fresh against now and takes precedence over the literal
// DateFrom/DateTo.
func (c Criteria) bounds(now time.Time) DateRange {
	if c.Period != "" {
		return ResolvePeriod(c.Period, now)
	}
	return DateRange{From: c.DateFrom, To: c.DateTo}
}

// Apply narrows records to those matching every active predicate,
// preserving their relative order. It never reorders: the store
// delivers records pre-sorted and the filter keeps them that way.
func (c Criteria) Apply(records []Transaction, now time.Time) []Transaction {
	dates := c.bounds(now)
	minCents, hasMin := parseBound(c.MinAmount)
	maxCents, hasMax := parseBound(c.MaxAmount)
	search := strings.ToLower(strings.TrimSpace(c.Search))
	counterparty := strings.ToLower(c.CounterpartyContains)

	matched := make([]Transaction, 0, len(records))
	for _, t := range records {
		if search != "" && !containsFold(t.Description, search) &&
			!containsFold(t.Counterparty, search) && !containsFold(t.Category, search) {
			continue
		}
		if !dates.From.IsZero() && t.Date.Before(dates.From.Time) {
			continue
		}
		if !dates.To.IsZero() && t.Date.After(dates.To.Time) {
			continue
		}
		if c.Category != "" && t.Category != c.Category {
			continue
		}
		if counterparty != "" && !containsFold(t.Counterparty, counterparty) {
			continue
		}
		if c.Kind != "" && t.Kind != c.Kind {
			continue
		}
		if hasMin && t.Amount.Cents < minCents {
			continue
		}
		if hasMax && t.Amount.Cents > maxCents {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

// parseBound interprets an amount bound string. Empty or non-numeric
// input deactivates the bound.
func parseBound(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	m, err := ParseAmount(s)
	if err != nil {
		return 0, false
	}
	return m.Cents, true
}

// containsFold reports whether needle (already lowercased) occurs in
// haystack, ignoring case.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
