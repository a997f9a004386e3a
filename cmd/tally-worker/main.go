package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/amqp"
	"tally/internal/config"
	applog "tally/internal/log"
	"tally/internal/mirror"
	"tally/internal/storage"
	"tally/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.MirrorSpreadsheetID == "" {
		logger.Error("MIRROR_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open sqlite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheets, err := mirror.NewSheetsClient(ctx, mirror.Config{
		SpreadsheetID:   cfg.MirrorSpreadsheetID,
		SheetName:       cfg.MirrorSheetName,
		CredentialsFile: cfg.MirrorCredentialsFile,
		CredentialsJSON: cfg.MirrorCredentialsJSON,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize sheets client", applog.FieldError, err)
		os.Exit(1)
	}

	// The event loop is optional; without a broker the periodic scan
	// alone keeps the mirror converging.
	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to amqp", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		consumer = client
	} else {
		logger.Info("amqp disabled, relying on the periodic scan only")
	}

	logger.Info("starting mirror worker",
		applog.FieldOperation, applog.OpStartup,
		"spreadsheet_id", cfg.MirrorSpreadsheetID,
		"sheet", cfg.MirrorSheetName,
		"interval", cfg.MirrorInterval.String(),
		"batch_size", cfg.MirrorBatchSize)

	w := worker.New(repo, sheets, consumer, cfg.MirrorInterval, cfg.MirrorBatchSize, logger)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("worker stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
