package billing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stripe/stripe-go/v83"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	args := m.Called(ctx, customerID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	args := m.Called(ctx, subscriptionID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) UpdateMembership(ctx context.Context, userID string, tier domain.Tier, status domain.SubscriptionStatus, stripeCustomerID, subscriptionID string) error {
	args := m.Called(ctx, userID, tier, status, stripeCustomerID, subscriptionID)
	return args.Error(0)
}

func (m *mockUserStore) AddBadge(ctx context.Context, userID, badge string) error {
	args := m.Called(ctx, userID, badge)
	return args.Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Send(ctx context.Context, req domain.SendNotificationRequest) (*domain.Notification, error) {
	args := m.Called(ctx, req)
	if n := args.Get(0); n != nil {
		return n.(*domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStripeClient struct{ mock.Mock }

func (m *mockStripeClient) PortalSessionURL(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockStripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if s := args.Get(0); s != nil {
		return s.(*stripe.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func event(eventType string, payload interface{}) *stripe.Event {
	raw, _ := json.Marshal(payload)
	return &stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func newTestService(users *mockUserStore, notifier *mockNotifier, sc *mockStripeClient) Service {
	return NewService(users, notifier, newTestPriceMap(), sc)
}

func TestProcessEvent_CheckoutCompleted_UpgradesAndWelcomes(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByEmail", mock.Anything, "chef@example.com").
		Return(&domain.User{UserID: "u1", Email: "chef@example.com"}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierGuild, domain.SubscriptionActive, "cus_1", "sub_1").
		Return(nil)
	users.On("AddBadge", mock.Anything, "u1", domain.WelcomeBadge).Return(nil)
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(req domain.SendNotificationRequest) bool {
		return req.UserID == "u1" && req.Type == "welcome" && req.Channel == domain.ChannelEmail
	})).Return(&domain.Notification{NotificationID: "n1"}, nil)

	err := svc.ProcessEvent(context.Background(), event("checkout.session.completed", map[string]interface{}{
		"id":               "cs_1",
		"amount_total":     49700,
		"customer":         map[string]interface{}{"id": "cus_1"},
		"subscription":     map[string]interface{}{"id": "sub_1"},
		"customer_details": map[string]interface{}{"email": "chef@example.com"},
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestProcessEvent_CheckoutCompleted_UnknownEmail(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, domain.ErrNotFound)

	err := svc.ProcessEvent(context.Background(), event("checkout.session.completed", map[string]interface{}{
		"id":               "cs_1",
		"amount_total":     1900,
		"customer_details": map[string]interface{}{"email": "ghost@example.com"},
	}))

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	users.AssertNotCalled(t, "UpdateMembership", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_CheckoutCompleted_BadgeNotRegranted(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByEmail", mock.Anything, "chef@example.com").
		Return(&domain.User{UserID: "u1", Badges: []string{domain.WelcomeBadge}}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierBrigade, domain.SubscriptionActive, "", "").
		Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything).
		Return(&domain.Notification{NotificationID: "n1"}, nil)

	err := svc.ProcessEvent(context.Background(), event("checkout.session.completed", map[string]interface{}{
		"id":               "cs_2",
		"amount_total":     1900,
		"customer_details": map[string]interface{}{"email": "chef@example.com"},
	}))

	require.NoError(t, err)
	users.AssertNotCalled(t, "AddBadge", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_CheckoutCompleted_FreeTierGetsNoWelcome(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByEmail", mock.Anything, "chef@example.com").
		Return(&domain.User{UserID: "u1"}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierFree, domain.SubscriptionActive, "", "").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("checkout.session.completed", map[string]interface{}{
		"id":               "cs_3",
		"amount_total":     500,
		"customer_details": map[string]interface{}{"email": "chef@example.com"},
	}))

	require.NoError(t, err)
	users.AssertNotCalled(t, "AddBadge", mock.Anything, mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestProcessEvent_SubscriptionDeleted_ForcesFreeTier(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByStripeCustomerID", mock.Anything, "cus_1").
		Return(&domain.User{UserID: "u1", Tier: domain.TierGuild}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierFree, domain.SubscriptionCancel, "", "").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]interface{}{"id": "cus_1"},
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProcessEvent_SubscriptionLookupFallsBackToSubscriptionID(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByStripeCustomerID", mock.Anything, "cus_1").
		Return(nil, domain.ErrNotFound)
	users.On("GetBySubscriptionID", mock.Anything, "sub_1").
		Return(&domain.User{UserID: "u1"}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierFree, domain.SubscriptionCancel, "", "").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_1",
		"customer": map[string]interface{}{"id": "cus_1"},
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProcessEvent_PaymentFailed_MarksPastDueKeepsTier(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByStripeCustomerID", mock.Anything, "cus_1").
		Return(&domain.User{UserID: "u1", Tier: domain.TierFraternity}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierFraternity, domain.SubscriptionPastDue, "", "").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("invoice.payment_failed", map[string]interface{}{
		"customer":     "cus_1",
		"subscription": "sub_1",
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProcessEvent_PaymentSucceeded_RenewsAndReResolvesTier(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByStripeCustomerID", mock.Anything, "cus_1").
		Return(&domain.User{UserID: "u1", Tier: domain.TierBrigade}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").Return(&stripe.Subscription{
		ID: "sub_1",
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{Price: &stripe.Price{ID: "price_guild"}}},
		},
	}, nil)
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierGuild, domain.SubscriptionActive, "cus_1", "sub_1").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("invoice.payment_succeeded", map[string]interface{}{
		"customer":     "cus_1",
		"subscription": map[string]interface{}{"id": "sub_1"},
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
	sc.AssertExpectations(t)
}

func TestProcessEvent_PaymentSucceeded_KeepsStoredTierWhenFetchFails(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	users.On("GetByStripeCustomerID", mock.Anything, "cus_1").
		Return(&domain.User{UserID: "u1", Tier: domain.TierBrigade}, nil)
	sc.On("GetSubscription", mock.Anything, "sub_1").
		Return(nil, errors.New("stripe down"))
	users.On("UpdateMembership", mock.Anything, "u1", domain.TierBrigade, domain.SubscriptionActive, "cus_1", "sub_1").
		Return(nil)

	err := svc.ProcessEvent(context.Background(), event("invoice.payment_succeeded", map[string]interface{}{
		"customer":     "cus_1",
		"subscription": "sub_1",
	}))

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestProcessEvent_PaymentSucceeded_IgnoresNonSubscriptionInvoice(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	err := svc.ProcessEvent(context.Background(), event("invoice.payment_succeeded", map[string]interface{}{
		"customer": "cus_1",
	}))

	require.NoError(t, err)
	users.AssertNotCalled(t, "UpdateMembership", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_UnknownEventType_Ignored(t *testing.T) {
	users := new(mockUserStore)
	notifier := new(mockNotifier)
	sc := new(mockStripeClient)
	svc := newTestService(users, notifier, sc)

	err := svc.ProcessEvent(context.Background(), event("charge.refunded", map[string]interface{}{"id": "ch_1"}))

	require.NoError(t, err)
	users.AssertNotCalled(t, "UpdateMembership", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubscriptionStatusMapping(t *testing.T) {
	assert.Equal(t, domain.SubscriptionActive, subscriptionStatus(stripe.SubscriptionStatusActive))
	assert.Equal(t, domain.SubscriptionActive, subscriptionStatus(stripe.SubscriptionStatusTrialing))
	assert.Equal(t, domain.SubscriptionPastDue, subscriptionStatus(stripe.SubscriptionStatusPastDue))
	assert.Equal(t, domain.SubscriptionPastDue, subscriptionStatus(stripe.SubscriptionStatusUnpaid))
	assert.Equal(t, domain.SubscriptionCancel, subscriptionStatus(stripe.SubscriptionStatusCanceled))
}
