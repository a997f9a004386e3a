package core

import (
	"encoding/json"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if got.Income.Cents != 0 || got.Expenses.Cents != 0 || got.Net.Cents != 0 {
		t.Fatalf("expected all zeros, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 1, 15), Amount: Money{Cents: 200000}, Kind: Income},
		{Date: NewDate(2024, 1, 20), Amount: Money{Cents: 5000}, Kind: Expense, Category: "Groceries"},
	}
	got := Summarize(records)
	if got.Income.Cents != 200000 {
		t.Fatalf("income: expected 200000, got %d", got.Income.Cents)
	}
	if got.Expenses.Cents != 5000 {
		t.Fatalf("expenses: expected 5000, got %d", got.Expenses.Cents)
	}
	if got.Net.Cents != 195000 {
		t.Fatalf("net: expected 195000, got %d", got.Net.Cents)
	}
}

func TestSummarizeAdditiveOverDisjointSplit(t *testing.T) {
	records := sampleRecords()
	whole := Summarize(records)
	head := Summarize(records[:1])
	tail := Summarize(records[1:])
	if whole.Income.Cents != head.Income.Cents+tail.Income.Cents ||
		whole.Expenses.Cents != head.Expenses.Cents+tail.Expenses.Cents ||
		whole.Net.Cents != head.Net.Cents+tail.Net.Cents {
		t.Fatalf("expected componentwise additivity: %+v vs %+v + %+v", whole, head, tail)
	}
}

func TestTotalsJSONRoundTripWithNegativeNet(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 1, 20), Amount: Money{Cents: 4250}, Kind: Expense,
			Category: "Groceries", Description: "shop", Counterparty: "Market"},
	}
	totals := Summarize(records)
	if totals.Net.Cents != -4250 {
		t.Fatalf("expected net -4250, got %d", totals.Net.Cents)
	}

	data, err := json.Marshal(totals)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"income":0.00,"expenses":42.50,"net":-42.50}` {
		t.Fatalf("unexpected wire form: %s", data)
	}

	var back Totals
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != totals {
		t.Fatalf("round trip mismatch: %+v != %+v", back, totals)
	}
}

func TestFilterThenSummarizeScenario(t *testing.T) {
	records := []Transaction{
		{Date: NewDate(2024, 1, 15), Amount: Money{Cents: 200000}, Kind: Income,
			Category: "Salary", Description: "salary", Counterparty: "Acme"},
		{Date: NewDate(2024, 1, 20), Amount: Money{Cents: 5000}, Kind: Expense,
			Category: "Groceries", Description: "shop", Counterparty: "Market"},
	}
	now := at(2024, 1, 25)

	filtered := Criteria{Period: PeriodThisMonth}.Apply(records, now)
	if len(filtered) != 2 {
		t.Fatalf("expected both records in this-month, got %d", len(filtered))
	}
	totals := Summarize(filtered)
	if totals.Income.Cents != 200000 || totals.Expenses.Cents != 5000 || totals.Net.Cents != 195000 {
		t.Fatalf("unexpected totals: %+v", totals)
	}

	byCategory := Criteria{Category: "Groceries"}.Apply(records, now)
	if len(byCategory) != 1 || byCategory[0].Category != "Groceries" {
		t.Fatalf("expected only the groceries record, got %v", ids(byCategory))
	}

	byMin := Criteria{MinAmount: "100"}.Apply(records, now)
	if len(byMin) != 1 || byMin[0].Kind != Income {
		t.Fatalf("expected only the 2000 income record, got %v", ids(byMin))
	}
}
