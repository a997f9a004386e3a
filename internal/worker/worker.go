// Package worker drives the spreadsheet mirror. It reacts to record
// events from the queue and additionally sweeps the store for rows the
// events missed, so the mirror converges even when the broker drops.
package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/gateway"
	"tally/internal/log"
	"tally/internal/mirror"
)

// Store is the slice of the repository the worker needs: fetching the
// current row behind an event and bookkeeping the mirror flags.
type Store interface {
	Get(ctx context.Context, ownerID string, id int64) (core.Transaction, error)
	PendingMirror(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkMirrored(ctx context.Context, id int64) error
	MarkMirrorError(ctx context.Context, id int64) error
}

// Consumer delivers record events until the context ends.
type Consumer interface {
	ConsumeRecordEvents(ctx context.Context, handler func(*amqp.RecordEvent) error) error
}

type Worker struct {
	store     Store
	mirror    mirror.Appender
	consumer  Consumer // nil disables the event loop
	interval  time.Duration
	batchSize int
	logger    *log.Logger
}

func New(store Store, appender mirror.Appender, consumer Consumer, interval time.Duration, batchSize int, logger *log.Logger) *Worker {
	return &Worker{
		store:     store,
		mirror:    appender,
		consumer:  consumer,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until the context is canceled or a loop fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeRecordEvents(ctx, func(event *amqp.RecordEvent) error {
				return w.handleEvent(ctx, event)
			})
		})
	}
	g.Go(func() error { return w.scanLoop(ctx) })
	return g.Wait()
}

// handleEvent mirrors one record event. Creates and updates refetch
// the row, so a stale or duplicated event still mirrors current data.
// A non-nil error requeues the event.
func (w *Worker) handleEvent(ctx context.Context, event *amqp.RecordEvent) error {
	if event.Op == amqp.OpDeleted {
		if event.Snapshot == nil {
			w.logger.WarnContext(ctx, "delete event without snapshot, nothing to mirror",
				log.FieldRecordID, event.ID)
			return nil
		}
		if _, err := w.mirror.AppendTombstone(ctx, *event.Snapshot); err != nil {
			w.logger.ErrorContext(ctx, "failed to mirror tombstone",
				log.FieldRecordID, event.ID, log.FieldError, err)
			return err
		}
		return nil
	}

	tx, err := w.store.Get(ctx, event.OwnerID, event.ID)
	if errors.Is(err, gateway.ErrNotFound) {
		// Deleted between the event and now; the delete event will
		// carry its own tombstone.
		return nil
	}
	if err != nil {
		return err
	}
	if err := w.mirrorRecord(ctx, tx); err != nil {
		// The row is flagged; ack the event so the queue does not loop
		// on an append the sheet keeps rejecting.
		w.logger.ErrorContext(ctx, "failed to mirror record from event",
			log.FieldRecordID, tx.ID, log.FieldError, err)
	}
	return nil
}

func (w *Worker) scanLoop(ctx context.Context) error {
	w.scanOnce(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.scanOnce(ctx)
		}
	}
}

// scanOnce mirrors up to one batch of pending rows. Failures flag the
// row and move on; the flag keeps the scan from retrying a poisoned
// row until its next mutation.
func (w *Worker) scanOnce(ctx context.Context) {
	records, err := w.store.PendingMirror(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "pending mirror scan failed", log.FieldError, err)
		return
	}
	for _, tx := range records {
		if err := w.mirrorRecord(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "failed to mirror record",
				log.FieldRecordID, tx.ID, log.FieldError, err)
		}
	}
}

func (w *Worker) mirrorRecord(ctx context.Context, tx core.Transaction) error {
	ref, err := w.mirror.AppendRecord(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkMirrorError(ctx, tx.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "failed to flag mirror error",
				log.FieldRecordID, tx.ID, log.FieldError, markErr)
		}
		return err
	}
	if err := w.store.MarkMirrored(ctx, tx.ID); err != nil {
		return err
	}
	w.logger.InfoContext(ctx, "record mirrored",
		log.FieldRecordID, tx.ID,
		log.FieldOwnerID, tx.OwnerID,
		log.FieldRowRef, ref)
	return nil
}
