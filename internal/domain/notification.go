package domain

import "time"

// Channel identifies a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp:
		return true
	}
	return false
}

// Priority of a notification intent.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

// Delivery status of a persisted notification row.
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped" // suppressed by the recipient's channel settings
)

// Notification is a persisted notification intent. Immutable once created
// except for the delivery status and the in_app read flag.
type Notification struct {
	NotificationID string            `json:"id" dynamodbav:"notification_id"`
	UserID         string            `json:"user_id" dynamodbav:"user_id"`
	Type           string            `json:"type" dynamodbav:"type"`
	Channel        Channel           `json:"channel" dynamodbav:"channel"`
	Title          string            `json:"title" dynamodbav:"title"`
	Message        string            `json:"message" dynamodbav:"message"`
	Data           map[string]string `json:"data,omitempty" dynamodbav:"data"`
	Priority       Priority          `json:"priority" dynamodbav:"priority"`
	ScheduledFor   *time.Time        `json:"scheduled_for,omitempty" dynamodbav:"scheduled_for"`
	Status         string            `json:"status" dynamodbav:"status"`
	Readed         int               `json:"readed" dynamodbav:"readed"` // legacy field name preserved
	CreatedAt      time.Time         `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time         `json:"updated" dynamodbav:"updated_at"`
}

// SendNotificationRequest is the API payload for creating one intent.
type SendNotificationRequest struct {
	UserID       string            `json:"user_id" validate:"required"`
	Type         string            `json:"type" validate:"required"`
	Channel      Channel           `json:"channel" validate:"required"`
	Title        string            `json:"title" validate:"required"`
	Message      string            `json:"message" validate:"required"`
	Data         map[string]string `json:"data"`
	Priority     Priority          `json:"priority"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
}

// BulkNotificationRequest expands one intent template over many recipients.
type BulkNotificationRequest struct {
	UserIDs      []string          `json:"user_ids" validate:"required,min=1"`
	Type         string            `json:"type" validate:"required"`
	Channel      Channel           `json:"channel" validate:"required"`
	Title        string            `json:"title" validate:"required"`
	Message      string            `json:"message" validate:"required"`
	Data         map[string]string `json:"data"`
	Priority     Priority          `json:"priority"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
}

// LiveEvent carries what the reminder flow needs about an upcoming session.
type LiveEvent struct {
	EventID  string    `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	JoinURL  string    `json:"join_url"`
}
