// Package mirror appends transaction rows to a Google spreadsheet. The
// sheet is an append-only journal: deletes land as tombstone rows
// rather than removing anything.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tally/internal/core"
	"tally/internal/log"
)

const (
	rowStatusActive  = "active"
	rowStatusDeleted = "deleted"
)

// Appender is the slice of the mirror the worker needs. The returned
// reference is the sheet range the row landed in.
type Appender interface {
	AppendRecord(ctx context.Context, tx core.Transaction) (string, error)
	AppendTombstone(ctx context.Context, tx core.Transaction) (string, error)
}

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// SheetsClient mirrors records into a single sheet via the Sheets API.
type SheetsClient struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewSheetsClient authenticates with the configured service-account
// credentials. Inline JSON wins over a credentials file.
func NewSheetsClient(ctx context.Context, config Config, logger *log.Logger) (*SheetsClient, error) {
	if config.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentials []byte
	switch {
	case config.CredentialsJSON != "":
		credentials = []byte(config.CredentialsJSON)
	case config.CredentialsFile != "":
		data, err := os.ReadFile(config.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read mirror credentials file: %w", err)
		}
		credentials = data
	default:
		return nil, errors.New("missing mirror credentials")
	}

	svc, err := gsheet.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsClient{
		svc:           svc,
		spreadsheetID: config.SpreadsheetID,
		sheetName:     config.SheetName,
		logger:        logger.WithComponent(log.ComponentMirror),
	}, nil
}

func (c *SheetsClient) AppendRecord(ctx context.Context, tx core.Transaction) (string, error) {
	return c.appendRow(ctx, recordRow(tx, rowStatusActive))
}

// AppendTombstone marks a deletion in the journal. The row carries the
// record's last known field values so the sheet stays auditable.
func (c *SheetsClient) AppendTombstone(ctx context.Context, tx core.Transaction) (string, error) {
	return c.appendRow(ctx, recordRow(tx, rowStatusDeleted))
}

func (c *SheetsClient) appendRow(ctx context.Context, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:J", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append row to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "row mirrored",
		log.FieldOperation, log.OpMirror,
		log.FieldRowRef, ref)
	return ref, nil
}

// recordRow lays a transaction out as one sheet row, columns A:J. The
// amount is written as a decimal so the sheet can sum it natively.
func recordRow(tx core.Transaction, status string) []any {
	return []any{
		tx.ID,
		tx.OwnerID,
		tx.Date.String(),
		float64(tx.Amount.Cents) / 100.0,
		string(tx.Kind),
		tx.Category,
		tx.Description,
		tx.Counterparty,
		tx.PaymentMethod,
		status,
	}
}
