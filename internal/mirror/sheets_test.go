package mirror

import (
	"context"
	"log/slog"
	"testing"

	"tally/internal/core"
	"tally/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError, Component: log.ComponentMirror})
}

func sampleTransaction() core.Transaction {
	return core.Transaction{
		ID:            7,
		OwnerID:       "owner-1",
		Date:          core.NewDate(2026, 8, 15),
		Amount:        core.Money{Cents: 4275},
		Kind:          core.Expense,
		Category:      "Groceries",
		Description:   "weekly shop",
		Counterparty:  "FreshMart",
		PaymentMethod: "Credit Card",
	}
}

func TestRecordRowLayout(t *testing.T) {
	row := recordRow(sampleTransaction(), rowStatusActive)
	want := []any{
		int64(7), "owner-1", "2026-08-15", 42.75, "expense",
		"Groceries", "weekly shop", "FreshMart", "Credit Card", "active",
	}
	if len(row) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(row))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Fatalf("column %d: expected %v (%T), got %v (%T)", i, want[i], want[i], row[i], row[i])
		}
	}
}

func TestTombstoneRowStatus(t *testing.T) {
	row := recordRow(sampleTransaction(), rowStatusDeleted)
	if row[len(row)-1] != "deleted" {
		t.Fatalf("expected tombstone status in the last column, got %v", row[len(row)-1])
	}
}

func TestNewSheetsClientRequiresCredentials(t *testing.T) {
	_, err := NewSheetsClient(context.Background(), Config{SpreadsheetID: "sheet-1"}, testLogger())
	if err == nil {
		t.Fatalf("expected an error without credentials")
	}
}

func TestNewSheetsClientRequiresSpreadsheet(t *testing.T) {
	_, err := NewSheetsClient(context.Background(), Config{CredentialsJSON: "{}"}, testLogger())
	if err == nil {
		t.Fatalf("expected an error without a spreadsheet id")
	}
}
