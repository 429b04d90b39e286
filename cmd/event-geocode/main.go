package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"evntly_backend/internal/adapters"
	"evntly_backend/internal/agenda/repository"
	"evntly_backend/internal/agenda/service"
	"evntly_backend/internal/events"
	"evntly_backend/internal/places"
	"evntly_backend/platform/config"
	"evntly_backend/platform/db"
	"evntly_backend/platform/logger"
)

const batchSize = 25

// event-geocode backfills coordinates for stored events that were saved with
// a free-text location only.
func main() {
	cfg, err := config.LoadWithoutSecrets()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if cfg.GetDatabaseURL() == "" {
		panic("DATABASE_URL is required")
	}

	log := logger.New(cfg.Env)
	log.Info("starting event geocode backfill")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	// the client's limiter keeps the run inside the provider's usage policy
	lookup := places.WithRetry(places.NewClient(places.OptionsFromConfig(cfg), log), cfg.GetPlacesRetryBackoff(), log)

	svc := service.New(repo, events.NewInMemoryBus(log), log)
	svc.SetGeocoder(adapters.NewPlacesGeocoder(lookup))

	// events that stay unresolved are skipped so the loop terminates
	attempted := make(map[string]struct{})
	processed := 0
	for {
		if ctx.Err() != nil {
			log.Info("backfill interrupted", "processed", processed)
			return
		}

		pending, err := repo.ListMissingCoordinates(ctx, batchSize+len(attempted))
		if err != nil {
			log.Error("failed to list events", "error", err)
			return
		}

		progress := false
		for _, event := range pending {
			if _, seen := attempted[event.ID.String()]; seen {
				continue
			}
			attempted[event.ID.String()] = struct{}{}
			progress = true

			if err := svc.GeocodeEvent(ctx, event.ID); err != nil {
				log.Error("geocode failed", "eventId", event.ID, "error", err)
				continue
			}
			processed++
		}

		if !progress {
			log.Info("no events left to geocode", "attempted", len(attempted))
			return
		}
	}
}
