package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cheflamb/brigade-api/internal/application/notification"
	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/infrastructure/queue"
	"github.com/hibiken/asynq"
)

// Worker consumes scheduled delivery tasks and realizes them through the
// dispatcher. Runs in the API process as a background goroutine.
type Worker struct {
	server        *asynq.Server
	notifications notification.NotificationStore
	dispatcher    notification.Service
}

func New(cfg *config.Config, store notification.NotificationStore, dispatcher notification.Service) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: 5,
			Logger:      asynqLogger{},
		},
	)
	return &Worker{server: server, notifications: store, dispatcher: dispatcher}
}

// Run blocks until the server stops. Callers start it in a goroutine.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeDeliverNotification, w.handleDeliver)
	return w.server.Run(mux)
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleDeliver(ctx context.Context, t *asynq.Task) error {
	var p queue.DeliverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	n, err := w.notifications.Get(ctx, p.NotificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("scheduled notification vanished", "notification_id", p.NotificationID)
			return nil
		}
		return err
	}
	if err := w.dispatcher.Deliver(ctx, n); err != nil {
		slog.Error("scheduled delivery failed", "notification_id", p.NotificationID, "err", err)
		return err
	}
	return nil
}

// asynqLogger bridges asynq's logger onto slog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) { slog.Debug(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...interface{})  { slog.Info(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...interface{})  { slog.Warn(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...interface{}) { slog.Error(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...interface{}) { slog.Error(fmt.Sprint(args...)) }
