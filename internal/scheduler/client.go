package scheduler

import (
	"context"
	"time"

	"evntly_backend/platform/config"
	"evntly_backend/platform/rediskit"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	geocodeMaxRetry = 5
	geocodeTimeout  = time.Minute
	// uniqueness window collapsing duplicate geocode requests for one event
	geocodeUniqueTTL = 10 * time.Minute
)

type Client struct {
	client *asynq.Client
	queue  string
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleEventGeocode queues coordinate lookup for an event saved without
// coordinates.
func (c *Client) ScheduleEventGeocode(ctx context.Context, eventID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewGeocodeEventTask(GeocodeEventPayload{EventID: eventID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(geocodeMaxRetry),
		asynq.Timeout(geocodeTimeout),
		asynq.Unique(geocodeUniqueTTL),
	)
	return err
}

func redisClientOpt(cfg config.RedisConfig) (asynq.RedisClientOpt, error) {
	opt, err := rediskit.Options(cfg)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}
