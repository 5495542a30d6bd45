// Package cli holds the start-up steps shared by cmd/calendario,
// cmd/reminder-worker and cmd/calendar-export.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"calendario/internal/amqp"
	"calendario/internal/backend"
	"calendario/internal/config"
	applog "calendario/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default. An unknown level falls back to info with a warning.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component

	level, err := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Level = level

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Ignoring LOG_LEVEL", "error", err)
	}
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend creates the configured storage backend or exits the process.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	storageLogger := logger.With(applog.FieldComponent, applog.ComponentStorage).Logger
	result, err := backend.NewFactory(storageLogger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// Topology maps the AMQP settings onto exchange and queue names.
func Topology(cfg *config.Config) amqp.Topology {
	return amqp.Topology{
		Exchange:      cfg.AMQPExchange,
		ExpenseQueue:  cfg.AMQPExpenseQueue,
		ReminderQueue: cfg.AMQPReminderQueue,
	}
}

// Cleanup runs a backend cleanup function and logs its error.
func Cleanup(logger *applog.Logger, result *backend.BackendResult) {
	if result == nil || result.Cleanup == nil {
		return
	}
	if err := result.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", "error", err)
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
