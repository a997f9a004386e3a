// Package editor implements the create/edit lifecycle of a single
// in-progress transaction draft. One draft may be in flight at a time;
// starting a new create or edit while composing discards the previous
// unsaved draft.
package editor

import (
	"context"
	"errors"
	"fmt"

	"tally/internal/core"
)

type State int

const (
	StateIdle State = iota
	StateComposing
)

// ErrNotComposing is returned by Submit when no draft is in progress.
var ErrNotComposing = errors.New("no draft in progress")

// Store is the slice of the sync gateway the editor needs. Create is
// used when the draft targets no existing record, Update otherwise.
type Store interface {
	Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, ownerID string, id int64, patch core.Patch) error
}

// Draft mirrors the editable transaction fields. It never carries an
// id, owner, or timestamps; those belong to the store.
type Draft struct {
	Date          core.Date
	Amount        core.Money
	Kind          core.Kind
	Category      string
	Description   string
	Counterparty  string
	PaymentMethod string
	PaymentDetail string
	AccountUsed   string
}

// Editor is the per-session state machine. It is not safe for
// concurrent use; the session serializes its own events.
type Editor struct {
	ownerID  string
	store    Store
	state    State
	draft    Draft
	targetID int64 // nonzero while editing an existing record
}

func New(ownerID string, store Store) *Editor {
	return &Editor{ownerID: ownerID, store: store}
}

func (e *Editor) State() State { return e.state }
func (e *Editor) Draft() Draft { return e.draft }

// Target returns the id of the record the draft will overwrite, and
// whether one is set.
func (e *Editor) Target() (int64, bool) {
	return e.targetID, e.targetID != 0
}

// StartCreate opens a fresh draft defaulted to today, zero amount, and
// expense kind. Any draft already in progress is discarded.
func (e *Editor) StartCreate(today core.Date) {
	e.state = StateComposing
	e.draft = Draft{Date: today, Kind: core.Expense}
	e.targetID = 0
}

// StartEdit opens a draft populated from an existing record. Any draft
// already in progress is discarded.
func (e *Editor) StartEdit(record core.Transaction) {
	e.state = StateComposing
	e.draft = Draft{
		Date:          record.Date,
		Amount:        record.Amount,
		Kind:          record.Kind,
		Category:      record.Category,
		Description:   record.Description,
		Counterparty:  record.Counterparty,
		PaymentMethod: record.PaymentMethod,
		PaymentDetail: record.PaymentDetail,
		AccountUsed:   record.AccountUsed,
	}
	e.targetID = record.ID
}

// Cancel discards the draft and returns to idle.
func (e *Editor) Cancel() {
	e.state = StateIdle
	e.draft = Draft{}
	e.targetID = 0
}

// SetDraft replaces the draft's editable fields while composing.
func (e *Editor) SetDraft(d Draft) {
	if e.state == StateComposing {
		e.draft = d
	}
}

// Submit validates the draft and sends it through the store. On a
// validation error no store call is made. On a store error the draft
// is retained so the user's input survives a retry. Only a fully
// successful submit returns the editor to idle.
func (e *Editor) Submit(ctx context.Context) (core.Transaction, error) {
	if e.state != StateComposing {
		return core.Transaction{}, ErrNotComposing
	}
	tx := e.transaction()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if e.targetID == 0 {
		created, err := e.store.Create(ctx, tx)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
		}
		tx = created
	} else {
		if err := e.store.Update(ctx, e.ownerID, e.targetID, e.patch()); err != nil {
			return core.Transaction{}, fmt.Errorf("update transaction %d: %w", e.targetID, err)
		}
		tx.ID = e.targetID
	}
	e.Cancel()
	return tx, nil
}

func (e *Editor) transaction() core.Transaction {
	return core.Transaction{
		OwnerID:       e.ownerID,
		Date:          e.draft.Date,
		Amount:        e.draft.Amount,
		Kind:          e.draft.Kind,
		Category:      e.draft.Category,
		Description:   e.draft.Description,
		Counterparty:  e.draft.Counterparty,
		PaymentMethod: e.draft.PaymentMethod,
		PaymentDetail: e.draft.PaymentDetail,
		AccountUsed:   e.draft.AccountUsed,
	}
}

// patch carries the whole form; edits always resubmit every editable
// field, matching the store's partial-update contract trivially.
func (e *Editor) patch() core.Patch {
	d := e.draft
	return core.Patch{
		Date:          &d.Date,
		Amount:        &d.Amount,
		Kind:          &d.Kind,
		Category:      &d.Category,
		Description:   &d.Description,
		Counterparty:  &d.Counterparty,
		PaymentMethod: &d.PaymentMethod,
		PaymentDetail: &d.PaymentDetail,
		AccountUsed:   &d.AccountUsed,
	}
}
