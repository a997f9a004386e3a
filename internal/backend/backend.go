// Package backend assembles the transaction service from the
// configured store and optional event publisher.
package backend

import (
	"context"
	"fmt"
	"io"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/gateway"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

// Backend bundles the service with the resources behind it so the
// process can shut them down together.
type Backend struct {
	Service *services.TransactionService
	Store   gateway.Gateway
	Events  *amqp.Client // nil when AMQP is not configured

	closers []io.Closer
}

// New builds the backend named by the configuration. The summary
// cache's janitor runs until ctx ends.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Backend, error) {
	backendLogger := logger.WithComponent(log.ComponentBackend)

	b := &Backend{}
	switch cfg.DataBackend {
	case "sqlite":
		// NewSQLiteRepository migrates the schema itself.
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		b.Store = repo
		b.closers = append(b.closers, repo)
		backendLogger.Info("using sqlite store", "path", cfg.SQLiteDBPath)
	case "memory":
		b.Store = gateway.NewMemory()
		backendLogger.Info("using in-memory store")
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}

	var events services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		b.Events = client
		b.closers = append(b.closers, client)
		events = client
	}

	summaries := cache.NewLRU[core.Totals](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	summaries.StartJanitor(ctx, cfg.SummaryCacheTTL)

	b.Service = services.NewTransactionService(b.Store, events, summaries, logger)
	return b, nil
}

// Close releases the store and broker connections in reverse order.
func (b *Backend) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
