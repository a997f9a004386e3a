// Package storage is the durable SQLite-backed implementation of the
// sync gateway, plus the mirror bookkeeping the worker relies on.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"
	"tally/internal/gateway"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, owner_id, date, amount_cents, kind, category,
	description, counterparty, payment_method, payment_detail, account_used,
	created_at, updated_at`

// List returns the owner's records newest date first, ties broken by
// the higher id (the later insertion).
func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner_id = ?
		ORDER BY date DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	records := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, date, amount_cents, kind, category,
			description, counterparty, payment_method, payment_detail, account_used,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.OwnerID, tx.Date.String(), tx.Amount.Cents, string(tx.Kind), tx.Category,
		tx.Description, tx.Counterparty, tx.PaymentMethod, tx.PaymentDetail, tx.AccountUsed,
		now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	tx.ID = id
	tx.CreatedAt = now
	tx.UpdatedAt = now
	return tx, nil
}

// Update applies a partial-field patch. The patched record is read,
// merged, and validated before anything is written, so a bad patch
// leaves the row untouched.
func (r *SQLiteRepository) Update(ctx context.Context, ownerID string, id int64, patch core.Patch) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	defer dbTx.Rollback()

	row := dbTx.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND owner_id = ?`, id, ownerID)
	current, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.ErrNotFound
	}
	if err != nil {
		return err
	}

	applyPatch(&current, patch)
	if err := current.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = dbTx.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, amount_cents = ?, kind = ?, category = ?, description = ?,
			counterparty = ?, payment_method = ?, payment_detail = ?, account_used = ?,
			mirrored = 0, mirror_error = 0, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		current.Date.String(), current.Amount.Cents, string(current.Kind), current.Category,
		current.Description, current.Counterparty, current.PaymentMethod, current.PaymentDetail,
		current.AccountUsed, now.Format(time.RFC3339), id, ownerID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("update transaction %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if affected == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

// Get retrieves one record scoped to its owner.
func (r *SQLiteRepository) Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND owner_id = ?`, id, ownerID)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, gateway.ErrNotFound
	}
	return tx, err
}

// PendingMirror returns records not yet appended to the spreadsheet
// mirror, oldest first, for the worker's periodic scan.
func (r *SQLiteRepository) PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE mirrored = 0 AND mirror_error = 0
		ORDER BY id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending mirror: %w", err)
	}
	defer rows.Close()

	var records []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending mirror: %w", err)
	}
	return records, nil
}

// MarkMirrored records a successful append to the mirror.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET mirrored = 1, mirror_error = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark mirrored %d: %w", id, err)
	}
	return nil
}

// MarkMirrorError flags a record so the periodic scan stops retrying
// it until the next mutation resets the flag.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET mirror_error = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark mirror error %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                   core.Transaction
		date, kind           string
		createdAt, updatedAt string
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &date, &tx.Amount.Cents, &kind, &tx.Category,
		&tx.Description, &tx.Counterparty, &tx.PaymentMethod, &tx.PaymentDetail,
		&tx.AccountUsed, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction date %q: %w", date, err)
	}
	tx.Kind = core.Kind(kind)
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		tx.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		tx.UpdatedAt = t
	}
	return tx, nil
}

func applyPatch(tx *core.Transaction, patch core.Patch) {
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Kind != nil {
		tx.Kind = *patch.Kind
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Counterparty != nil {
		tx.Counterparty = *patch.Counterparty
	}
	if patch.PaymentMethod != nil {
		tx.PaymentMethod = *patch.PaymentMethod
	}
	if patch.PaymentDetail != nil {
		tx.PaymentDetail = *patch.PaymentDetail
	}
	if patch.AccountUsed != nil {
		tx.AccountUsed = *patch.AccountUsed
	}
}
