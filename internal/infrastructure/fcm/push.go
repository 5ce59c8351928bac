package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"google.golang.org/api/option"
)

// Defaults applied to every push payload when the caller leaves them blank.
const (
	DefaultIcon  = "/icons/icon-192.png"
	DefaultBadge = "/icons/badge-72.png"
	DefaultTag   = "brigade-notification"
)

// PushAction is one action button on a rendered notification.
type PushAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// PushPayload is the web-push notification shape handed to the transport.
type PushPayload struct {
	Title              string            `json:"title"`
	Body               string            `json:"body"`
	Icon               string            `json:"icon,omitempty"`
	Badge              string            `json:"badge,omitempty"`
	Tag                string            `json:"tag,omitempty"`
	RequireInteraction bool              `json:"require_interaction,omitempty"`
	Silent             bool              `json:"silent,omitempty"`
	Data               map[string]string `json:"data,omitempty"`
	Actions            []PushAction      `json:"actions,omitempty"`
}

// PushSender delivers a web-push payload to one registration token.
type PushSender interface {
	SendPush(ctx context.Context, token string, payload PushPayload) (messageID string, err error)
}

type sender struct {
	client *messaging.Client
}

// NewSender initializes the Firebase app and its Messaging client.
func NewSender(ctx context.Context, cfg *config.Config) (PushSender, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return &sender{client: client}, nil
}

func (s *sender) SendPush(ctx context.Context, token string, payload PushPayload) (string, error) {
	msg := ComposeMessage(token, payload)
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("fcm send: %w: %v", domain.ErrProviderFailure, err)
	}
	return id, nil
}

// ComposeMessage builds the FCM webpush message, filling icon/badge/tag
// defaults. Exported for tests.
func ComposeMessage(token string, p PushPayload) *messaging.Message {
	if p.Icon == "" {
		p.Icon = DefaultIcon
	}
	if p.Badge == "" {
		p.Badge = DefaultBadge
	}
	if p.Tag == "" {
		p.Tag = DefaultTag
	}

	n := &messaging.WebpushNotification{
		Title:              p.Title,
		Body:               p.Body,
		Icon:               p.Icon,
		Badge:              p.Badge,
		Tag:                p.Tag,
		RequireInteraction: p.RequireInteraction,
		Silent:             p.Silent,
	}
	for _, a := range p.Actions {
		n.Actions = append(n.Actions, &messaging.WebpushNotificationAction{
			Action: a.Action,
			Title:  a.Title,
			Icon:   a.Icon,
		})
	}

	return &messaging.Message{
		Token: token,
		Webpush: &messaging.WebpushConfig{
			Data:         p.Data,
			Notification: n,
		},
	}
}

// ActionRoute maps a notification action identifier to its navigation target.
// The service worker applies the same table on notificationclick; keep the
// two in sync. An empty string means "no navigation" (dismiss).
func ActionRoute(action string) string {
	switch action {
	case "view":
		return "/dashboard"
	case "join":
		return "/live"
	case "journal":
		return "/journal"
	case "dismiss":
		return ""
	default:
		return "/"
	}
}
