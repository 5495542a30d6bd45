package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"calendario/internal/amqp"
	"calendario/internal/cache"
	"calendario/internal/cli"
	"calendario/internal/core"
	apphttp "calendario/internal/http"
	applog "calendario/internal/log"
	"calendario/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, result)

	// Month overviews are cached until the next write or TTL expiry
	monthCache := cache.NewLRUCache[core.MonthOverview](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger.With(applog.FieldComponent, applog.ComponentCache).Logger)
	cacheManager.Register(monthCache)
	cacheManager.StartCleanup(cfg.CacheTTL)
	defer cacheManager.Stop()

	calendarService := services.NewCalendarService(result.Backend, monthCache)

	// AMQP is optional for the API; without it expense changes are not announced
	var publisher services.ChangePublisher
	amqpLogger := logger.WithComponent(applog.ComponentAMQP)
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cli.Topology(cfg))
		if err != nil {
			amqpLogger.Warn("Failed to initialize AMQP client, continuing without messaging", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			amqpLogger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
		}
	} else {
		amqpLogger.Info("AMQP disabled - expense changes will not be published")
	}

	expenseService := services.NewExpenseService(result.Backend, publisher, calendarService)

	ready := func(ctx context.Context) error {
		_, err := result.Backend.ListActiveExpenses(ctx)
		return err
	}
	srv := apphttp.NewServer(":"+cfg.Port, logger, expenseService, calendarService, ready)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err, applog.FieldOperation, applog.OpShutdown)
		}
	}()

	logger.Info("Starting calendario server",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache_size", cfg.CacheSize,
		"cache_ttl", cfg.CacheTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		cli.Cleanup(logger, result)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
