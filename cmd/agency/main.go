package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"agency/internal/auth"
	"agency/internal/backend"
	"agency/internal/cli"
	apphttp "agency/internal/http"
	applog "agency/internal/log"
	"agency/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	opts := []services.Option{services.WithLogger(logger.WithComponent(applog.ComponentGateway))}
	if result.Publisher != nil {
		opts = append(opts, services.WithLedgerPublisher(result.Publisher))
	}
	gateway := services.NewGateway(result.Store, opts...)

	srv := apphttp.NewServer(":"+cfg.Port, gateway, auth.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer), apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              result.Ready,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting agency server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"ledger_events", result.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
