package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cheflamb/brigade-api/internal/domain"
	stripeinfra "github.com/cheflamb/brigade-api/internal/infrastructure/stripe"
	"github.com/stripe/stripe-go/v83"
)

// UserStore is the profile persistence the membership updater needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error)
	UpdateMembership(ctx context.Context, userID string, tier domain.Tier, status domain.SubscriptionStatus, stripeCustomerID, subscriptionID string) error
	AddBadge(ctx context.Context, userID, badge string) error
}

// Notifier dispatches a notification intent. Satisfied by the notification
// service; the settings gate lives there, not here.
type Notifier interface {
	Send(ctx context.Context, req domain.SendNotificationRequest) (*domain.Notification, error)
}

type Service interface {
	// ProcessEvent routes one verified webhook event. ErrUserNotFound and
	// provider failures are returned for the ingress to log; the ingress
	// still acks 200 so the provider does not retry a partially-applied
	// side effect.
	ProcessEvent(ctx context.Context, event *stripe.Event) error

	// PortalURL creates a billing-portal session for a customer.
	PortalURL(ctx context.Context, customerID, returnURL string) (string, error)
}

type service struct {
	users    UserStore
	notifier Notifier
	prices   *PriceMap
	stripe   stripeinfra.Client
}

func NewService(users UserStore, notifier Notifier, prices *PriceMap, stripeClient stripeinfra.Client) Service {
	return &service{users: users, notifier: notifier, prices: prices, stripe: stripeClient}
}

func (s *service) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	return s.stripe.PortalSessionURL(ctx, customerID, returnURL)
}

func (s *service) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		return s.handleSubscriptionChanged(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_succeeded":
		return s.handlePaymentSucceeded(ctx, event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(ctx, event)
	default:
		// Unrecognized types are accepted and ignored so new provider
		// event types never break the endpoint.
		slog.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}
}

// handleCheckoutCompleted is the initial-purchase path: the user is looked up
// by checkout email, upgraded, granted the one-time welcome badge, and sent a
// welcome notification. The membership write happens-before the notification
// dispatch; the two are not transactional (a crash between them leaves the
// user upgraded but unnotified — accepted failure envelope).
func (s *service) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("unmarshal checkout session: %w", err)
	}

	email := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		return fmt.Errorf("checkout session %s has no customer email: %w", session.ID, domain.ErrUserNotFound)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("checkout for %s: %w", email, domain.ErrUserNotFound)
	}

	tier := s.prices.ResolveSessionTier(&session)

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	if err := s.users.UpdateMembership(ctx, user.UserID, tier, domain.SubscriptionActive, customerID, subscriptionID); err != nil {
		return fmt.Errorf("apply tier update: %w", err)
	}
	slog.Info("membership updated from checkout",
		"user_id", user.UserID, "tier", tier, "customer_id", customerID)

	if tier == domain.TierFree {
		return nil
	}

	if !user.HasBadge(domain.WelcomeBadge) {
		if err := s.users.AddBadge(ctx, user.UserID, domain.WelcomeBadge); err != nil {
			slog.Error("welcome badge grant failed", "user_id", user.UserID, "err", err)
		}
	}

	if _, err := s.notifier.Send(ctx, domain.SendNotificationRequest{
		UserID:  user.UserID,
		Type:    "welcome",
		Channel: domain.ChannelEmail,
		Title:   "Welcome to The Successful Chef Brigade!",
		Message: fmt.Sprintf("Your %s membership is active. Your first course is waiting for you.", tier),
		Data:    map[string]string{"tier": string(tier)},
	}); err != nil {
		slog.Error("welcome notification failed", "user_id", user.UserID, "err", err)
	}
	return nil
}

func (s *service) handleSubscriptionChanged(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	user, err := s.lookupBySubscription(ctx, &sub)
	if err != nil {
		return err
	}

	tier := s.prices.ResolveSubscriptionTier(&sub)
	status := subscriptionStatus(sub.Status)
	if status == domain.SubscriptionCancel {
		tier = domain.TierFree
	}

	if err := s.users.UpdateMembership(ctx, user.UserID, tier, status, customerIDOf(&sub), sub.ID); err != nil {
		return fmt.Errorf("apply tier update: %w", err)
	}
	slog.Info("membership updated from subscription event",
		"user_id", user.UserID, "tier", tier, "status", status)
	return nil
}

func (s *service) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("unmarshal subscription: %w", err)
	}

	user, err := s.lookupBySubscription(ctx, &sub)
	if err != nil {
		return err
	}

	// Deletion always forces the free tier. Only a brand-new checkout
	// completion leaves the canceled state.
	if err := s.users.UpdateMembership(ctx, user.UserID, domain.TierFree, domain.SubscriptionCancel, "", ""); err != nil {
		return fmt.Errorf("apply cancellation: %w", err)
	}
	slog.Info("membership canceled", "user_id", user.UserID)
	return nil
}

func (s *service) handlePaymentSucceeded(ctx context.Context, event *stripe.Event) error {
	customerID, subscriptionID := invoiceRefs(event.Data.Raw)
	if subscriptionID == "" {
		// Not a subscription invoice — nothing to renew.
		return nil
	}

	user, err := s.lookupByIDs(ctx, customerID, subscriptionID)
	if err != nil {
		return err
	}

	// Re-resolve the tier from the live subscription so a mid-cycle plan
	// change lands with the renewal.
	tier := user.Tier
	if sub, err := s.stripe.GetSubscription(ctx, subscriptionID); err == nil {
		tier = s.prices.ResolveSubscriptionTier(sub)
	} else {
		slog.Warn("could not fetch subscription for renewal; keeping stored tier",
			"subscription_id", subscriptionID, "err", err)
	}

	if err := s.users.UpdateMembership(ctx, user.UserID, tier, domain.SubscriptionActive, customerID, subscriptionID); err != nil {
		return fmt.Errorf("apply renewal: %w", err)
	}
	slog.Info("membership renewed", "user_id", user.UserID, "tier", tier)
	return nil
}

func (s *service) handlePaymentFailed(ctx context.Context, event *stripe.Event) error {
	customerID, subscriptionID := invoiceRefs(event.Data.Raw)
	if customerID == "" && subscriptionID == "" {
		return nil
	}

	user, err := s.lookupByIDs(ctx, customerID, subscriptionID)
	if err != nil {
		return err
	}

	// Tier is untouched: access survives until the subscription is deleted.
	if err := s.users.UpdateMembership(ctx, user.UserID, user.Tier, domain.SubscriptionPastDue, "", ""); err != nil {
		return fmt.Errorf("apply past_due: %w", err)
	}
	slog.Warn("membership past due", "user_id", user.UserID)
	return nil
}

func (s *service) lookupBySubscription(ctx context.Context, sub *stripe.Subscription) (*domain.User, error) {
	return s.lookupByIDs(ctx, customerIDOf(sub), sub.ID)
}

func (s *service) lookupByIDs(ctx context.Context, customerID, subscriptionID string) (*domain.User, error) {
	if customerID != "" {
		if user, err := s.users.GetByStripeCustomerID(ctx, customerID); err == nil {
			return user, nil
		}
	}
	if subscriptionID != "" {
		if user, err := s.users.GetBySubscriptionID(ctx, subscriptionID); err == nil {
			return user, nil
		}
	}
	return nil, fmt.Errorf("customer %q / subscription %q: %w", customerID, subscriptionID, domain.ErrUserNotFound)
}

func customerIDOf(sub *stripe.Subscription) string {
	if sub.Customer != nil {
		return sub.Customer.ID
	}
	return ""
}

// subscriptionStatus maps Stripe's subscription status to ours.
func subscriptionStatus(s stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled:
		return domain.SubscriptionCancel
	default:
		return domain.SubscriptionActive
	}
}

// invoiceRefs pulls customer and subscription ids out of a raw invoice
// payload. Both fields arrive as either an id string or an expanded object
// depending on API version, so this parses the raw JSON instead of relying
// on the typed struct.
func invoiceRefs(raw json.RawMessage) (customerID, subscriptionID string) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", ""
	}
	return refID(data["customer"]), refID(data["subscription"])
}

func refID(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if id, ok := t["id"].(string); ok {
			return id
		}
	}
	return ""
}
