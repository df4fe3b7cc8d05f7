package main

import (
	"context"
	"errors"
	"os"
	"time"

	"agency/internal/amqp"
	"agency/internal/backend"
	"agency/internal/cli"
	applog "agency/internal/log"
	"agency/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting agency-worker")

	if !cfg.LedgerEnabled() {
		logger.Error("AMQP_URL is required to consume ledger events")
		os.Exit(1)
	}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Memory backend is private to this process, only reconciled records will be mirrored")
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	// The worker consumes events; it never publishes them.
	backendCfg.AMQPURL = ""

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	ledger, err := factory.CreateLedger(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create ledger", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	ledgerWorker := worker.NewLedgerWorker(result.Store, ledger, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", applog.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	reconcile := func() {
		n, err := ledgerWorker.Reconcile(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Ledger reconcile failed", applog.FieldError, err, applog.FieldCount, n)
			return
		}
		logger.Info("Ledger reconciled", applog.FieldCount, n)
	}

	// Events published while the worker was down are caught up here.
	reconcile()

	if cfg.ReconcileInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ReconcileInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					reconcile()
				}
			}
		}()
	}

	go func() {
		if err := amqpClient.ConsumeLedgerEvents(ctx, ledgerWorker.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Ledger event consumption failed", applog.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
