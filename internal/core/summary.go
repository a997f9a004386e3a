package core

// Totals aggregates a filtered view: income sum, expense sum, and the
// net (income minus expenses). All sums are over cents.
type Totals struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Net      Money `json:"net"`
}

// Summarize reduces records to their totals. The empty collection
// yields all zeros. Order of summation does not matter.
func Summarize(records []Transaction) Totals {
	var t Totals
	for _, r := range records {
		switch r.Kind {
		case Income:
			t.Income.Cents += r.Amount.Cents
		case Expense:
			t.Expenses.Cents += r.Amount.Cents
		}
	}
	t.Net.Cents = t.Income.Cents - t.Expenses.Cents
	return t
}
