// Package services orchestrates the transaction store, the editor
// lifecycle, change events, and the summary cache behind the HTTP
// handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/editor"
	"tally/internal/gateway"
	"tally/internal/log"
)

// Publisher sends record-change events to the mirror pipeline. A nil
// publisher disables events without disabling the service.
type Publisher interface {
	PublishRecordEvent(ctx context.Context, event *amqp.RecordEvent) error
}

// Getter is an optional store capability. When available, deletes
// capture a tombstone snapshot of the record before it disappears.
type Getter interface {
	Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error)
}

// View is what a read delivers: the filtered records and their totals.
// Stale is set when the store could not be reached and the view was
// served from the owner's last-known-good snapshot instead.
type View struct {
	Records []core.Transaction `json:"records"`
	Totals  core.Totals        `json:"totals"`
	Stale   bool               `json:"stale,omitempty"`
}

type TransactionService struct {
	store     gateway.Gateway
	events    Publisher
	summaries *cache.LRU[core.Totals]
	logger    *log.Logger

	mu        sync.Mutex
	snapshots map[string][]core.Transaction
	gens      map[string]uint64
	owners    map[string]*sync.Mutex
}

func NewTransactionService(store gateway.Gateway, events Publisher, summaries *cache.LRU[core.Totals], logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		events:    events,
		summaries: summaries,
		logger:    logger.WithComponent(log.ComponentService),
		snapshots: make(map[string][]core.Transaction),
		gens:      make(map[string]uint64),
		owners:    make(map[string]*sync.Mutex),
	}
}

// View loads the owner's records, filters them, and totals the result.
// A load failure is not fatal: the previous snapshot (or an empty list
// on first load) is filtered instead and the view is marked stale, so
// the caller can retry by triggering any reload.
func (s *TransactionService) View(ctx context.Context, ownerID string, criteria core.Criteria, now time.Time) View {
	records, err := s.store.List(ctx, ownerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list failed, serving last-known-good snapshot",
			log.FieldOwnerID, ownerID, log.FieldError, err)
		snapshot := s.snapshot(ownerID)
		filtered := criteria.Apply(snapshot, now)
		return View{Records: filtered, Totals: core.Summarize(filtered), Stale: true}
	}
	s.setSnapshot(ownerID, records)
	filtered := criteria.Apply(records, now)
	return View{Records: filtered, Totals: core.Summarize(filtered)}
}

// Summary returns the totals for a criteria set, short-circuiting
// repeated identical reads through the cache. Keys carry the owner's
// mutation generation, so any mutation implicitly invalidates every
// cached summary for that owner.
func (s *TransactionService) Summary(ctx context.Context, ownerID string, criteria core.Criteria, now time.Time) (core.Totals, bool) {
	key := s.summaryKey(ownerID, criteria, now)
	if s.summaries != nil {
		if totals, ok := s.summaries.Get(key); ok {
			return totals, false
		}
	}
	view := s.View(ctx, ownerID, criteria, now)
	if s.summaries != nil && !view.Stale {
		s.summaries.Set(key, view.Totals)
	}
	return view.Totals, view.Stale
}

// Create runs a fresh editor session over the submitted draft. The
// returned view is the post-mutation reload.
func (s *TransactionService) Create(ctx context.Context, ownerID string, draft editor.Draft) (core.Transaction, View, error) {
	defer s.lockOwner(ownerID)()

	ed := editor.New(ownerID, s.store)
	ed.StartCreate(core.DateOf(time.Now()))
	ed.SetDraft(draft)
	tx, err := ed.Submit(ctx)
	if err != nil {
		return core.Transaction{}, View{}, err
	}

	s.bumpGeneration(ownerID)
	s.publish(ctx, amqp.NewRecordEvent(amqp.OpCreated, tx.ID, ownerID))
	return tx, s.View(ctx, ownerID, core.Criteria{}, time.Now()), nil
}

// Update edits an existing record with the full submitted form.
func (s *TransactionService) Update(ctx context.Context, ownerID string, id int64, draft editor.Draft) (core.Transaction, View, error) {
	defer s.lockOwner(ownerID)()

	target := core.Transaction{ID: id, OwnerID: ownerID}
	if getter, ok := s.store.(Getter); ok {
		existing, err := getter.Get(ctx, ownerID, id)
		if err != nil {
			return core.Transaction{}, View{}, err
		}
		target = existing
	}

	ed := editor.New(ownerID, s.store)
	ed.StartEdit(target)
	ed.SetDraft(draft)
	tx, err := ed.Submit(ctx)
	if err != nil {
		return core.Transaction{}, View{}, err
	}

	s.bumpGeneration(ownerID)
	s.publish(ctx, amqp.NewRecordEvent(amqp.OpUpdated, tx.ID, ownerID))
	return tx, s.View(ctx, ownerID, core.Criteria{}, time.Now()), nil
}

// Delete removes a record and announces it with a tombstone snapshot
// when the store can still produce one.
func (s *TransactionService) Delete(ctx context.Context, ownerID string, id int64) (View, error) {
	defer s.lockOwner(ownerID)()

	var snapshot *core.Transaction
	if getter, ok := s.store.(Getter); ok {
		if existing, err := getter.Get(ctx, ownerID, id); err == nil {
			snapshot = &existing
		}
	}

	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return View{}, err
		}
		return View{}, fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.bumpGeneration(ownerID)
	event := amqp.NewRecordEvent(amqp.OpDeleted, id, ownerID)
	if snapshot != nil {
		event = amqp.NewDeleteEvent(*snapshot)
	}
	s.publish(ctx, event)
	return s.View(ctx, ownerID, core.Criteria{}, time.Now()), nil
}

func (s *TransactionService) publish(ctx context.Context, event *amqp.RecordEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, event); err != nil {
		// The mutation already succeeded; the periodic scan will pick
		// the record up even without the event.
		s.logger.ErrorContext(ctx, "failed to publish record event",
			log.FieldOperation, event.Op,
			log.FieldRecordID, event.ID,
			log.FieldError, err)
	}
}

// lockOwner serializes mutations per owner so overlapping triggers on
// the same account cannot interleave. Reads stay lock-free.
func (s *TransactionService) lockOwner(ownerID string) func() {
	s.mu.Lock()
	m, ok := s.owners[ownerID]
	if !ok {
		m = &sync.Mutex{}
		s.owners[ownerID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

func (s *TransactionService) snapshot(ownerID string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[ownerID]
}

func (s *TransactionService) setSnapshot(ownerID string, records []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[ownerID] = records
}

func (s *TransactionService) bumpGeneration(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[ownerID]++
}

func (s *TransactionService) summaryKey(ownerID string, c core.Criteria, now time.Time) string {
	s.mu.Lock()
	gen := s.gens[ownerID]
	s.mu.Unlock()
	// The evaluation date is part of the key because named periods
	// resolve against it. Caller-supplied fields are quoted so their
	// content cannot fake a field boundary.
	return fmt.Sprintf("%q|%d|%s|%q|%s|%s|%q|%q|%q|%q|%q|%q",
		ownerID, gen, now.Format("2006-01-02"),
		c.Search, c.DateFrom, c.DateTo, c.Period,
		c.Category, c.CounterpartyContains, string(c.Kind), c.MinAmount, c.MaxAmount)
}
