package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evntly_backend/internal/adapters"
	"evntly_backend/internal/agenda/repository"
	"evntly_backend/internal/agenda/service"
	"evntly_backend/internal/events"
	"evntly_backend/internal/places"
	"evntly_backend/internal/scheduler"
	"evntly_backend/platform/config"
	"evntly_backend/platform/db"
	"evntly_backend/platform/logger"
	"evntly_backend/platform/rediskit"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadWithoutSecrets()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.GetDatabaseURL() == "" || cfg.GetRedisURL() == "" {
		panic("DATABASE_URL and REDIS_URL are required for the scheduler worker")
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Handlers registered here run in the worker only; the API process
	// refreshes its live lists on the next client request.
	eventBus := events.NewInMemoryBus(log)

	// Worker-side geocoding shares the Redis suggestion tier with the API.
	rdb, err := rediskit.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	client := places.NewClient(places.OptionsFromConfig(cfg), log)
	lookup := places.NewSharedLookup(
		places.WithRetry(client, cfg.GetPlacesRetryBackoff(), log),
		places.NewRedisCache(rdb, cfg.GetPlacesSharedCacheTTL()),
		log,
	)

	agendaService := service.New(repository.New(pool), eventBus, log)
	agendaService.SetGeocoder(adapters.NewPlacesGeocoder(lookup))

	worker, err := scheduler.NewWorker(cfg, agendaService, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
