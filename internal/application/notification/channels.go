package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/infrastructure/fcm"
)

// Deliver realizes one persisted notification row over its channel. This is
// the single place the settings gate runs: a disabled channel marks the row
// skipped and no transport is touched. Already-sent rows are no-ops so task
// replays from the queue are harmless.
func (s *service) Deliver(ctx context.Context, n *domain.Notification) error {
	if n.Status == domain.NotificationSent || n.Status == domain.NotificationSkipped {
		return nil
	}

	settings, err := s.settings.Get(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.ChannelEnabled(n.Channel) {
		slog.Info("notification suppressed by settings",
			"notification_id", n.NotificationID, "user_id", n.UserID, "channel", n.Channel)
		return s.notifications.SetStatus(ctx, n.NotificationID, domain.NotificationSkipped)
	}

	switch n.Channel {
	case domain.ChannelInApp:
		// Persisted row is the delivery; the client polls the unread list.
		err = nil
	case domain.ChannelEmail:
		err = s.deliverEmail(ctx, n)
	case domain.ChannelSMS:
		err = s.deliverSMS(ctx, n)
	case domain.ChannelPush:
		err = s.deliverPush(ctx, n)
	default:
		err = fmt.Errorf("unknown channel %q: %w", n.Channel, domain.ErrBadRequest)
	}

	if err != nil {
		if serr := s.notifications.SetStatus(ctx, n.NotificationID, domain.NotificationFailed); serr != nil {
			slog.Error("mark failed errored", "notification_id", n.NotificationID, "err", serr)
		}
		return err
	}
	return s.notifications.SetStatus(ctx, n.NotificationID, domain.NotificationSent)
}

func (s *service) deliverEmail(ctx context.Context, n *domain.Notification) error {
	if s.mailer == nil {
		return fmt.Errorf("email transport not configured: %w", domain.ErrProviderFailure)
	}
	user, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		return err
	}
	html, err := renderEmailHTML(n, s.baseURL)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	msgID, err := s.mailer.SendEmail(ctx, user.Email, n.Title, html, n.Message)
	if err != nil {
		return err
	}
	slog.Info("email sent", "notification_id", n.NotificationID, "message_id", msgID)
	return nil
}

func (s *service) deliverSMS(ctx context.Context, n *domain.Notification) error {
	if s.sms == nil {
		return fmt.Errorf("sms transport not configured: %w", domain.ErrProviderFailure)
	}
	user, err := s.users.Get(ctx, n.UserID)
	if err != nil {
		return err
	}
	if user.Phone == nil || *user.Phone == "" {
		return fmt.Errorf("user %s has no phone on file: %w", n.UserID, domain.ErrInvalidPhoneNumber)
	}
	msgID, err := s.sms.SendSMS(ctx, *user.Phone, n.Message)
	if err != nil {
		return err
	}
	slog.Info("sms sent", "notification_id", n.NotificationID, "message_id", msgID)
	return nil
}

func (s *service) deliverPush(ctx context.Context, n *domain.Notification) error {
	if s.push == nil {
		return fmt.Errorf("push transport not configured: %w", domain.ErrProviderFailure)
	}
	subs, err := s.pushSubs.ListByUser(ctx, n.UserID)
	if err != nil {
		return err
	}
	payload := pushPayloadFor(n)

	var delivered int
	for _, sub := range subs {
		if !sub.Enable {
			continue
		}
		if _, err := s.push.SendPush(ctx, sub.Token, payload); err != nil {
			slog.Warn("push token failed", "notification_id", n.NotificationID,
				"subscription_id", sub.SubscriptionID, "err", err)
			continue
		}
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("no push subscription accepted the message: %w", domain.ErrProviderFailure)
	}
	return nil
}

// pushPayloadFor maps a stored intent to a web-push payload. Urgent rows
// require interaction; live-event reminders get a join button, everything
// else a view button.
func pushPayloadFor(n *domain.Notification) fcm.PushPayload {
	actions := []fcm.PushAction{
		{Action: "view", Title: "View"},
		{Action: "dismiss", Title: "Dismiss"},
	}
	if n.Type == "live_event_reminder" {
		actions[0] = fcm.PushAction{Action: "join", Title: "Join Now"}
	}
	return fcm.PushPayload{
		Title:              n.Title,
		Body:               n.Message,
		RequireInteraction: n.Priority == domain.PriorityUrgent,
		Data:               n.Data,
		Actions:            actions,
	}
}

var emailTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f5;font-family:Arial,Helvetica,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
        <tr><td style="background:#1a1a2e;padding:20px 32px;">
          <span style="color:#e94560;font-size:20px;font-weight:bold;">Chef Life Brigade</span>
        </td></tr>
        <tr><td style="padding:32px;">
          <h1 style="margin:0 0 16px;font-size:22px;color:#1a1a2e;">{{.Title}}</h1>
          <p style="margin:0 0 24px;font-size:15px;line-height:1.6;color:#44444c;">{{.Message}}</p>
          {{if .ActionURL}}<a href="{{.ActionURL}}" style="display:inline-block;background:#e94560;color:#ffffff;text-decoration:none;padding:12px 28px;border-radius:6px;font-size:15px;">Open</a>{{end}}
        </td></tr>
        <tr><td style="padding:16px 32px;background:#fafafa;font-size:12px;color:#9a9aa2;">
          You are receiving this because of your notification preferences. Manage them from your account settings.
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`))

func renderEmailHTML(n *domain.Notification, baseURL string) (string, error) {
	actionURL := ""
	if n.Data != nil {
		if u, ok := n.Data["join_url"]; ok {
			actionURL = u
		} else if path, ok := n.Data["action_url"]; ok {
			actionURL = baseURL + path
		}
	}
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Title, Message, ActionURL string
	}{n.Title, n.Message, actionURL})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
