package domain

import "time"

// ChannelSettings is the per-channel preference block.
type ChannelSettings struct {
	Enabled    bool `json:"enabled" dynamodbav:"enabled"`
	NewContent bool `json:"new_content" dynamodbav:"new_content"`
	LiveEvents bool `json:"live_events" dynamodbav:"live_events"`
	Marketing  bool `json:"marketing" dynamodbav:"marketing"`
}

// NotificationSettings holds one user's channel preferences. Read before
// every channel delivery: a disabled channel must never be sent to.
type NotificationSettings struct {
	UserID    string          `json:"user_id" dynamodbav:"user_id"`
	Email     ChannelSettings `json:"email" dynamodbav:"email"`
	SMS       ChannelSettings `json:"sms" dynamodbav:"sms"`
	Push      ChannelSettings `json:"push" dynamodbav:"push"`
	InApp     ChannelSettings `json:"in_app" dynamodbav:"in_app"`
	UpdatedAt time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// ChannelEnabled reports whether the given channel may be delivered to.
func (s *NotificationSettings) ChannelEnabled(c Channel) bool {
	switch c {
	case ChannelEmail:
		return s.Email.Enabled
	case ChannelSMS:
		return s.SMS.Enabled
	case ChannelPush:
		return s.Push.Enabled
	case ChannelInApp:
		return s.InApp.Enabled
	}
	return false
}

// DefaultNotificationSettings is what a user without a stored settings row
// gets: every channel on, marketing SMS off.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	on := ChannelSettings{Enabled: true, NewContent: true, LiveEvents: true, Marketing: true}
	return &NotificationSettings{
		UserID: userID,
		Email:  on,
		SMS:    ChannelSettings{Enabled: true, NewContent: true, LiveEvents: true, Marketing: false},
		Push:   on,
		InApp:  on,
	}
}

// UpdateSettingsRequest is the API payload for replacing channel preferences.
type UpdateSettingsRequest struct {
	Email *ChannelSettings `json:"email"`
	SMS   *ChannelSettings `json:"sms"`
	Push  *ChannelSettings `json:"push"`
	InApp *ChannelSettings `json:"in_app"`
}
