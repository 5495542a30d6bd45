package main

import (
	"os"

	"calendario/internal/amqp"
	"calendario/internal/backend"
	"calendario/internal/cli"
	applog "calendario/internal/log"
	"calendario/internal/services"
	"calendario/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting reminder-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the reminder worker")
		os.Exit(1)
	}
	if backend.BackendType(cfg.DataBackend) == backend.MemoryBackend {
		logger.Warn("Memory backend is private to this process; only expenses created here will be reminded")
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, result)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cli.Topology(cfg))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		cli.Cleanup(logger, result)
		os.Exit(1)
	}
	defer amqpClient.Close()

	processor := services.NewReminderProcessor(result.Backend, amqpClient, cfg.ReminderLookaheadDays)
	logger.Info("Payment reminder processor configured",
		"interval", cfg.ReminderInterval,
		"lookahead_days", cfg.ReminderLookaheadDays,
		"backend", cfg.DataBackend)

	w := worker.NewReminderWorker(processor, amqpClient, cfg.ReminderInterval)
	if err := w.Run(ctx); err != nil {
		logger.Error("Reminder worker stopped", "error", err)
		amqpClient.Close()
		cli.Cleanup(logger, result)
		os.Exit(1)
	}

	logger.Info("Reminder-worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
