package domain

import "time"

// PushSubscription is one device's push registration token for a user.
// A user may hold several (one per browser/device).
type PushSubscription struct {
	SubscriptionID string    `json:"id" dynamodbav:"subscription_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Token          string    `json:"token" dynamodbav:"token"`
	UserAgent      string    `json:"user_agent,omitempty" dynamodbav:"user_agent"`
	Enable         bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterPushSubscriptionRequest is the API payload for registering a token.
type RegisterPushSubscriptionRequest struct {
	Token     string `json:"token" validate:"required"`
	UserAgent string `json:"user_agent"`
}
