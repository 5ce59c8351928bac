package stripeinfra

import (
	"context"
	"fmt"

	"github.com/cheflamb/brigade-api/internal/config"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stripe/stripe-go/v83"
)

// Client wraps the pieces of the Stripe API this service calls outside of
// webhook payload parsing.
type Client interface {
	PortalSessionURL(ctx context.Context, customerID, returnURL string) (string, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
}

type client struct {
	sc *stripe.Client
}

func NewClient(cfg *config.Config) Client {
	return &client{sc: stripe.NewClient(cfg.StripeSecretKey)}
}

// PortalSessionURL creates a billing-portal session so a member can manage
// their subscription, and returns its URL.
func (c *client) PortalSessionURL(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer: stripe.String(customerID),
	}
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}
	session, err := c.sc.V1BillingPortalSessions.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w: %v", domain.ErrProviderFailure, err)
	}
	return session.URL, nil
}

func (c *client) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, err := c.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription: %w: %v", domain.ErrProviderFailure, err)
	}
	return sub, nil
}
