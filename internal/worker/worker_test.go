package worker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/gateway"
	"tally/internal/log"
)

type fakeStore struct {
	records      map[int64]core.Transaction
	pending      []core.Transaction
	getErr       error
	mirrored     []int64
	mirrorErrors []int64
}

func (s *fakeStore) Get(_ context.Context, ownerID string, id int64) (core.Transaction, error) {
	if s.getErr != nil {
		return core.Transaction{}, s.getErr
	}
	tx, ok := s.records[id]
	if !ok || tx.OwnerID != ownerID {
		return core.Transaction{}, gateway.ErrNotFound
	}
	return tx, nil
}

func (s *fakeStore) PendingMirror(_ context.Context, limit int) ([]core.Transaction, error) {
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	return s.pending[:limit], nil
}

func (s *fakeStore) MarkMirrored(_ context.Context, id int64) error {
	s.mirrored = append(s.mirrored, id)
	return nil
}

func (s *fakeStore) MarkMirrorError(_ context.Context, id int64) error {
	s.mirrorErrors = append(s.mirrorErrors, id)
	return nil
}

type fakeAppender struct {
	appendErr  error
	records    []core.Transaction
	tombstones []core.Transaction
}

func (a *fakeAppender) AppendRecord(_ context.Context, tx core.Transaction) (string, error) {
	if a.appendErr != nil {
		return "", a.appendErr
	}
	a.records = append(a.records, tx)
	return "Transactions!A2:J2", nil
}

func (a *fakeAppender) AppendTombstone(_ context.Context, tx core.Transaction) (string, error) {
	if a.appendErr != nil {
		return "", a.appendErr
	}
	a.tombstones = append(a.tombstones, tx)
	return "Transactions!A3:J3", nil
}

func record(id int64, owner string) core.Transaction {
	return core.Transaction{
		ID:           id,
		OwnerID:      owner,
		Date:         core.NewDate(2026, 8, 15),
		Amount:       core.Money{Cents: 1000},
		Kind:         core.Expense,
		Category:     "Groceries",
		Description:  "shop",
		Counterparty: "FreshMart",
	}
}

func newTestWorker(store *fakeStore, appender *fakeAppender) *Worker {
	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentWorker})
	return New(store, appender, nil, time.Minute, 10, logger)
}

func TestHandleCreatedEventMirrorsCurrentRow(t *testing.T) {
	store := &fakeStore{records: map[int64]core.Transaction{7: record(7, "owner-1")}}
	appender := &fakeAppender{}
	w := newTestWorker(store, appender)

	err := w.handleEvent(context.Background(), amqp.NewRecordEvent(amqp.OpCreated, 7, "owner-1"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.records) != 1 || appender.records[0].ID != 7 {
		t.Fatalf("expected record 7 appended, got %+v", appender.records)
	}
	if len(store.mirrored) != 1 || store.mirrored[0] != 7 {
		t.Fatalf("expected record 7 marked mirrored, got %v", store.mirrored)
	}
}

func TestHandleEventForVanishedRecordIsAcked(t *testing.T) {
	store := &fakeStore{records: map[int64]core.Transaction{}}
	appender := &fakeAppender{}
	w := newTestWorker(store, appender)

	err := w.handleEvent(context.Background(), amqp.NewRecordEvent(amqp.OpUpdated, 9, "owner-1"))
	if err != nil {
		t.Fatalf("a record deleted before processing must not requeue: %v", err)
	}
	if len(appender.records) != 0 {
		t.Fatalf("nothing should be appended for a vanished record")
	}
}

func TestHandleEventStoreFailureRequeues(t *testing.T) {
	store := &fakeStore{getErr: errors.New("db down")}
	w := newTestWorker(store, &fakeAppender{})

	if err := w.handleEvent(context.Background(), amqp.NewRecordEvent(amqp.OpCreated, 7, "owner-1")); err == nil {
		t.Fatalf("a transient store failure must requeue the event")
	}
}

func TestHandleDeleteEventAppendsTombstone(t *testing.T) {
	appender := &fakeAppender{}
	w := newTestWorker(&fakeStore{}, appender)

	err := w.handleEvent(context.Background(), amqp.NewDeleteEvent(record(5, "owner-1")))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.tombstones) != 1 || appender.tombstones[0].ID != 5 {
		t.Fatalf("expected a tombstone for record 5, got %+v", appender.tombstones)
	}
}

func TestHandleDeleteEventWithoutSnapshotIsAcked(t *testing.T) {
	appender := &fakeAppender{}
	w := newTestWorker(&fakeStore{}, appender)

	err := w.handleEvent(context.Background(), amqp.NewRecordEvent(amqp.OpDeleted, 5, "owner-1"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.tombstones) != 0 {
		t.Fatalf("no snapshot means nothing to mirror")
	}
}

func TestAppendFailureFlagsRowAndAcks(t *testing.T) {
	store := &fakeStore{records: map[int64]core.Transaction{7: record(7, "owner-1")}}
	appender := &fakeAppender{appendErr: errors.New("sheet rejected the row")}
	w := newTestWorker(store, appender)

	err := w.handleEvent(context.Background(), amqp.NewRecordEvent(amqp.OpCreated, 7, "owner-1"))
	if err != nil {
		t.Fatalf("a flagged append failure must ack, got %v", err)
	}
	if len(store.mirrorErrors) != 1 || store.mirrorErrors[0] != 7 {
		t.Fatalf("expected record 7 flagged, got %v", store.mirrorErrors)
	}
	if len(store.mirrored) != 0 {
		t.Fatalf("a failed append must not be marked mirrored")
	}
}

func TestScanOnceMirrorsPendingBatch(t *testing.T) {
	store := &fakeStore{pending: []core.Transaction{record(1, "owner-1"), record(2, "owner-2")}}
	appender := &fakeAppender{}
	w := newTestWorker(store, appender)

	w.scanOnce(context.Background())

	if len(appender.records) != 2 {
		t.Fatalf("expected both pending rows mirrored, got %d", len(appender.records))
	}
	if len(store.mirrored) != 2 {
		t.Fatalf("expected both rows marked mirrored, got %v", store.mirrored)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(store, &fakeAppender{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not stop after cancel")
	}
}
