package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/infrastructure/fcm"
	"github.com/cheflamb/brigade-api/internal/infrastructure/queue"
	"github.com/cheflamb/brigade-api/internal/infrastructure/ses"
	"github.com/cheflamb/brigade-api/internal/infrastructure/sns"
	"github.com/cheflamb/brigade-api/internal/pkg/id"
)

// UrgentSMSLeadMinutes is the hard policy boundary for live-event reminders:
// an SMS fan-out happens only when the event is this close or closer.
const UrgentSMSLeadMinutes = 5

// NotificationStore is the persistence the dispatcher needs.
type NotificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	PutBatch(ctx context.Context, notifications []*domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	SetStatus(ctx context.Context, notificationID, status string) error
}

// SettingsStore reads and writes per-user channel preferences.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	Put(ctx context.Context, s *domain.NotificationSettings) error
}

// ScheduleStore persists recurring notification rules.
type ScheduleStore interface {
	Put(ctx context.Context, s *domain.RecurringSchedule) error
	ListByUser(ctx context.Context, userID string) ([]domain.RecurringSchedule, error)
	Deactivate(ctx context.Context, scheduleID string) error
}

// UserStore is the slice of the profile repo the dispatcher needs.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// PushSubscriptionStore manages a user's registered push tokens.
type PushSubscriptionStore interface {
	Put(ctx context.Context, sub *domain.PushSubscription) error
	Get(ctx context.Context, subscriptionID string) (*domain.PushSubscription, error)
	GetByToken(ctx context.Context, token string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, subscriptionID string) error
}

type Service interface {
	// Send persists the intent unconditionally, then delivers immediately
	// unless the intent carries a future ScheduledFor (which goes to the
	// durable scheduler instead).
	Send(ctx context.Context, req domain.SendNotificationRequest) (*domain.Notification, error)

	// SendBulk expands one intent over many recipients in a single batched
	// write. Delivery is always realized out-of-band by the worker.
	SendBulk(ctx context.Context, req domain.BulkNotificationRequest) (int, error)

	// Schedule persists a recurring rule. Realization is an external cron
	// concern; nothing in this service expands rules.
	Schedule(ctx context.Context, req domain.ScheduleNotificationRequest) (*domain.RecurringSchedule, error)

	ListSchedules(ctx context.Context, userID string) ([]domain.RecurringSchedule, error)

	// DeactivateSchedule turns a rule off without deleting its row. The rule
	// must belong to the given user.
	DeactivateSchedule(ctx context.Context, scheduleID, userID string) error

	// SendLiveEventReminder persists reminder intents for each user and, when
	// the lead time is within UrgentSMSLeadMinutes, fans out an immediate SMS.
	SendLiveEventReminder(ctx context.Context, event domain.LiveEvent, userIDs []string, minutesBefore int) error

	// Deliver realizes one persisted row: the settings gate runs here, once,
	// for every caller. Safe to call twice; a sent row is a no-op.
	Deliver(ctx context.Context, n *domain.Notification) error

	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) error

	GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.NotificationSettings, error)

	// HandleInboundSMS applies the STOP-word opt-out: on an exact keyword
	// match the sender's SMS channel is disabled and true is returned.
	HandleInboundSMS(ctx context.Context, from, body string) (bool, error)

	RegisterPushSubscription(ctx context.Context, userID string, req domain.RegisterPushSubscriptionRequest) (*domain.PushSubscription, error)
	ListPushSubscriptions(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	RemovePushSubscription(ctx context.Context, userID, subscriptionID string) error
}

type service struct {
	notifications NotificationStore
	settings      SettingsStore
	schedules     ScheduleStore
	users         UserStore
	pushSubs      PushSubscriptionStore
	mailer        ses.Mailer
	sms           sns.SMSSender
	push          fcm.PushSender
	scheduler     queue.Scheduler
	baseURL       string
}

// Deps bundles the dispatcher's collaborators.
type Deps struct {
	Notifications NotificationStore
	Settings      SettingsStore
	Schedules     ScheduleStore
	Users         UserStore
	PushSubs      PushSubscriptionStore
	Mailer        ses.Mailer
	SMS           sns.SMSSender
	Push          fcm.PushSender
	Scheduler     queue.Scheduler
	BaseURL       string
}

func NewService(d Deps) Service {
	return &service{
		notifications: d.Notifications,
		settings:      d.Settings,
		schedules:     d.Schedules,
		users:         d.Users,
		pushSubs:      d.PushSubs,
		mailer:        d.Mailer,
		sms:           d.SMS,
		push:          d.Push,
		scheduler:     d.Scheduler,
		baseURL:       d.BaseURL,
	}
}

func (s *service) Send(ctx context.Context, req domain.SendNotificationRequest) (*domain.Notification, error) {
	if !req.Channel.IsValid() {
		return nil, fmt.Errorf("unknown channel %q: %w", req.Channel, domain.ErrBadRequest)
	}
	n := newNotification(req.UserID, req.Type, req.Channel, req.Title, req.Message, req.Data, req.Priority, req.ScheduledFor)
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, err
	}

	if n.ScheduledFor != nil {
		if err := s.scheduler.EnqueueDelivery(ctx, n.NotificationID, *n.ScheduledFor); err != nil {
			return nil, fmt.Errorf("enqueue delivery: %w", err)
		}
		return n, nil
	}

	if err := s.Deliver(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

func (s *service) SendBulk(ctx context.Context, req domain.BulkNotificationRequest) (int, error) {
	if !req.Channel.IsValid() {
		return 0, fmt.Errorf("unknown channel %q: %w", req.Channel, domain.ErrBadRequest)
	}
	rows := make([]*domain.Notification, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		rows = append(rows, newNotification(userID, req.Type, req.Channel, req.Title, req.Message, req.Data, req.Priority, req.ScheduledFor))
	}
	if err := s.notifications.PutBatch(ctx, rows); err != nil {
		return 0, err
	}

	dueAt := time.Now().UTC()
	if req.ScheduledFor != nil {
		dueAt = *req.ScheduledFor
	}
	for _, n := range rows {
		if err := s.scheduler.EnqueueDelivery(ctx, n.NotificationID, dueAt); err != nil {
			slog.Error("enqueue bulk delivery failed", "notification_id", n.NotificationID, "err", err)
		}
	}
	return len(rows), nil
}

func (s *service) Schedule(ctx context.Context, req domain.ScheduleNotificationRequest) (*domain.RecurringSchedule, error) {
	now := time.Now().UTC()
	sched := &domain.RecurringSchedule{
		ScheduleID: id.New(),
		UserID:     req.UserID,
		Type:       req.Type,
		Channel:    req.Channel,
		Title:      req.Title,
		Message:    req.Message,
		Pattern:    req.Pattern,
		TimeOfDay:  req.TimeOfDay,
		DaysOfWeek: req.DaysOfWeek,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.schedules.Put(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *service) ListSchedules(ctx context.Context, userID string) ([]domain.RecurringSchedule, error) {
	return s.schedules.ListByUser(ctx, userID)
}

func (s *service) DeactivateSchedule(ctx context.Context, scheduleID, userID string) error {
	scheds, err := s.schedules.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, sched := range scheds {
		if sched.ScheduleID == scheduleID {
			return s.schedules.Deactivate(ctx, scheduleID)
		}
	}
	return fmt.Errorf("schedule %s: %w", scheduleID, domain.ErrNotFound)
}

func (s *service) SendLiveEventReminder(ctx context.Context, event domain.LiveEvent, userIDs []string, minutesBefore int) error {
	data := map[string]string{
		"event_id": event.EventID,
		"join_url": event.JoinURL,
	}
	title := fmt.Sprintf("%s starts in %d minutes", event.Title, minutesBefore)

	if _, err := s.SendBulk(ctx, domain.BulkNotificationRequest{
		UserIDs:  userIDs,
		Type:     "live_event_reminder",
		Channel:  domain.ChannelPush,
		Title:    title,
		Message:  "Tap to join the live session.",
		Data:     data,
		Priority: domain.PriorityUrgent,
	}); err != nil {
		return err
	}
	if _, err := s.SendBulk(ctx, domain.BulkNotificationRequest{
		UserIDs:  userIDs,
		Type:     "live_event_reminder",
		Channel:  domain.ChannelInApp,
		Title:    title,
		Message:  fmt.Sprintf("Join here: %s", event.JoinURL),
		Data:     data,
		Priority: domain.PriorityUrgent,
	}); err != nil {
		return err
	}

	// Hard policy boundary: SMS only when the event is imminent.
	if minutesBefore > UrgentSMSLeadMinutes {
		return nil
	}
	for _, userID := range userIDs {
		n := newNotification(userID, "live_event_reminder", domain.ChannelSMS,
			title, fmt.Sprintf("LIVE in %d min: %s. Join: %s", minutesBefore, event.Title, event.JoinURL),
			data, domain.PriorityUrgent, nil)
		if err := s.notifications.Put(ctx, n); err != nil {
			slog.Error("persist urgent reminder failed", "user_id", userID, "err", err)
			continue
		}
		if err := s.Deliver(ctx, n); err != nil {
			slog.Error("urgent SMS reminder failed", "user_id", userID, "err", err)
		}
	}
	return nil
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notifications.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.notifications.MarkAsRead(ctx, notificationID)
}

func (s *service) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	return s.settings.Get(ctx, userID)
}

func (s *service) UpdateSettings(ctx context.Context, userID string, req domain.UpdateSettingsRequest) (*domain.NotificationSettings, error) {
	current, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.SMS != nil {
		current.SMS = *req.SMS
	}
	if req.Push != nil {
		current.Push = *req.Push
	}
	if req.InApp != nil {
		current.InApp = *req.InApp
	}
	if err := s.settings.Put(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *service) HandleInboundSMS(ctx context.Context, from, body string) (bool, error) {
	if !sns.IsOptOut(body) {
		return false, nil
	}
	user, err := s.users.GetByPhone(ctx, from)
	if err != nil {
		return false, fmt.Errorf("inbound SMS from unknown number: %w", domain.ErrUserNotFound)
	}
	settings, err := s.settings.Get(ctx, user.UserID)
	if err != nil {
		return false, err
	}
	settings.SMS.Enabled = false
	if err := s.settings.Put(ctx, settings); err != nil {
		return false, err
	}
	slog.Info("sms opt-out applied", "user_id", user.UserID)
	return true, nil
}

// RegisterPushSubscription stores a device token. Re-registering an existing
// token refreshes its row instead of creating a duplicate.
func (s *service) RegisterPushSubscription(ctx context.Context, userID string, req domain.RegisterPushSubscriptionRequest) (*domain.PushSubscription, error) {
	now := time.Now().UTC()
	if existing, err := s.pushSubs.GetByToken(ctx, req.Token); err == nil {
		existing.UserID = userID
		existing.UserAgent = req.UserAgent
		existing.Enable = true
		existing.UpdatedAt = now
		if err := s.pushSubs.Put(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	sub := &domain.PushSubscription{
		SubscriptionID: id.New(),
		UserID:         userID,
		Token:          req.Token,
		UserAgent:      req.UserAgent,
		Enable:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.pushSubs.Put(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) ListPushSubscriptions(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	return s.pushSubs.ListByUser(ctx, userID)
}

func (s *service) RemovePushSubscription(ctx context.Context, userID, subscriptionID string) error {
	sub, err := s.pushSubs.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return fmt.Errorf("subscription belongs to another user: %w", domain.ErrForbidden)
	}
	return s.pushSubs.Delete(ctx, subscriptionID)
}

func newNotification(userID, typ string, channel domain.Channel, title, message string, data map[string]string, priority domain.Priority, scheduledFor *time.Time) *domain.Notification {
	if priority == "" {
		priority = domain.PriorityNormal
	}
	now := time.Now().UTC()
	return &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Type:           typ,
		Channel:        channel,
		Title:          title,
		Message:        message,
		Data:           data,
		Priority:       priority,
		ScheduledFor:   scheduledFor,
		Status:         domain.NotificationPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
