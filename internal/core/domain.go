package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind discriminates the direction of a money movement. Amounts are
	// magnitudes; the sign is implied by the kind.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one dated money movement. ID and the timestamps are
	// assigned by the store and stay zero until then. OwnerID scopes the
	// record to the authenticated user and is never user-editable.
	Transaction struct {
		ID            int64     `json:"id"`
		OwnerID       string    `json:"-"`
		Date          Date      `json:"date"`
		Amount        Money     `json:"amount"`
		Kind          Kind      `json:"kind"`
		Category      string    `json:"category"`
		Description   string    `json:"description"`
		Counterparty  string    `json:"counterparty"`
		PaymentMethod string    `json:"paymentMethod,omitempty"`
		PaymentDetail string    `json:"paymentDetail,omitempty"`
		AccountUsed   string    `json:"accountUsed,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// Patch is a partial-field update. Nil fields are left unchanged by
	// the store.
	Patch struct {
		Date          *Date
		Amount        *Money
		Kind          *Kind
		Category      *string
		Description   *string
		Counterparty  *string
		PaymentMethod *string
		PaymentDetail *string
		AccountUsed   *string
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCounterparty = errors.New("empty counterparty")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a Date from year, month, day. Dates carry no time of
// day; everything below the day is zeroed in UTC. Out-of-range values
// normalize the way time.Date does, so NewDate(2024, 3, 0) is the last
// day of February 2024.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses the YYYY-MM-DD wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the invariants required at the point of submission to
// the store. A zero amount is allowed; a negative one is not.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Counterparty) == "" {
		return ErrEmptyCounterparty
	}
	return nil
}

// IsValidationError reports whether err is one of the record validation
// sentinels, as opposed to a store or transport failure.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidDate, ErrInvalidAmount, ErrInvalidKind,
		ErrEmptyCategory, ErrEmptyDescription, ErrEmptyCounterparty,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
