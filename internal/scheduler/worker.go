package scheduler

import (
	"context"
	"fmt"

	"evntly_backend/platform/apperr"
	"evntly_backend/platform/config"
	"evntly_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// EventGeocoder fills in missing coordinates of a stored event.
type EventGeocoder interface {
	GeocodeEvent(ctx context.Context, eventID uuid.UUID) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	geocoder EventGeocoder
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, geocoder EventGeocoder, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Warn("scheduler task failed", "type", task.Type(), "error", err)
		}),
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		geocoder: geocoder,
		log:      log,
	}
	w.mux.HandleFunc(TaskGeocodeEvent, w.handleGeocodeEvent)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleGeocodeEvent(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeocodeEventPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.geocoder.GeocodeEvent(ctx, eventID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			// deleted before the task ran
			return nil
		}
		return err
	}
	return nil
}
