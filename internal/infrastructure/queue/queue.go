package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/hibiken/asynq"
)

// TypeDeliverNotification is the asynq task type for realizing a persisted
// notification row at its scheduled time.
const TypeDeliverNotification = "notification:deliver"

// DeliverPayload is the task body: just the row key. The worker re-reads the
// row so a task replay after a successful delivery finds status=sent and
// becomes a no-op.
type DeliverPayload struct {
	NotificationID string `json:"notification_id"`
}

// Scheduler enqueues durable, due-time-keyed delivery tasks. asynq gives
// at-least-once dequeue with retry; idempotency lives in the worker.
type Scheduler interface {
	EnqueueDelivery(ctx context.Context, notificationID string, dueAt time.Time) error
}

type scheduler struct {
	client *asynq.Client
}

func NewScheduler(cfg *config.Config) Scheduler {
	return &scheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
	}
}

func (s *scheduler) EnqueueDelivery(ctx context.Context, notificationID string, dueAt time.Time) error {
	b, err := json.Marshal(DeliverPayload{NotificationID: notificationID})
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	_, err = s.client.EnqueueContext(ctx, task, asynq.ProcessAt(dueAt))
	return err
}
