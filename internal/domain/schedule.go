package domain

import "time"

// Recurrence patterns for scheduled notifications.
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// RecurringSchedule is a persisted recurring-notification rule. Rows are
// created and listed here; realization (expanding rules into concrete
// notification rows) belongs to an external cron.
type RecurringSchedule struct {
	ScheduleID string     `json:"id" dynamodbav:"schedule_id"`
	UserID     string     `json:"user_id" dynamodbav:"user_id"`
	Type       string     `json:"type" dynamodbav:"type"`
	Channel    Channel    `json:"channel" dynamodbav:"channel"`
	Title      string     `json:"title" dynamodbav:"title"`
	Message    string     `json:"message" dynamodbav:"message"`
	Pattern    string     `json:"pattern" dynamodbav:"pattern"` // daily | weekly | monthly
	TimeOfDay  string     `json:"time_of_day" dynamodbav:"time_of_day"` // "HH:MM", 24h
	DaysOfWeek []int      `json:"days_of_week,omitempty" dynamodbav:"days_of_week"` // 0=Sunday, weekly only
	IsActive   bool       `json:"is_active" dynamodbav:"is_active"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// ScheduleNotificationRequest is the API payload for creating a recurring rule.
type ScheduleNotificationRequest struct {
	UserID     string  `json:"user_id" validate:"required"`
	Type       string  `json:"type" validate:"required"`
	Channel    Channel `json:"channel" validate:"required"`
	Title      string  `json:"title" validate:"required"`
	Message    string  `json:"message" validate:"required"`
	Pattern    string  `json:"pattern" validate:"required,oneof=daily weekly monthly"`
	TimeOfDay  string  `json:"time_of_day" validate:"required"`
	DaysOfWeek []int   `json:"days_of_week" validate:"omitempty,dive,min=0,max=6"`
}
