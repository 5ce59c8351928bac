package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v83"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

type mockBillingService struct{ mock.Mock }

func (m *mockBillingService) ProcessEvent(ctx context.Context, event *stripe.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockBillingService) PortalURL(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

// signPayload builds a Stripe-Signature header for the given body, the same
// scheme the real webhook sender uses: HMAC-SHA256 over "<ts>.<body>".
func signPayload(body []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), body)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// eventBody builds a minimal event payload the verifier accepts: the envelope
// must carry "object":"event" and an api_version matching the SDK pin.
func eventBody(eventType string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"type":%q,"data":{"object":{"id":"cs_1"}}}`,
		stripe.APIVersion, eventType))
}

func postWebhook(h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	rr := httptest.NewRecorder()
	h.HandleStripe(rr, req)
	return rr
}

func TestHandleStripe_ValidSignatureDispatchesEvent(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	body := eventBody("checkout.session.completed")
	svc.On("ProcessEvent", mock.Anything, mock.MatchedBy(func(e *stripe.Event) bool {
		return e.Type == "checkout.session.completed"
	})).Return(nil)

	rr := postWebhook(h, body, signPayload(body, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"received":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestHandleStripe_InvalidSignatureRejected(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	rr := postWebhook(h, body, signPayload(body, "whsec_wrong_secret", time.Now()))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
}

func TestHandleStripe_MissingSignatureRejected(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	rr := postWebhook(h, []byte(`{"id":"evt_1"}`), "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
}

func TestHandleStripe_TamperedBodyRejected(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	sig := signPayload(body, testWebhookSecret, time.Now())
	tampered := []byte(`{"id":"evt_1","type":"customer.subscription.deleted"}`)

	rr := postWebhook(h, tampered, sig)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
}

func TestHandleStripe_HandlerFailureStillAcks200(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	body := eventBody("invoice.payment_failed")
	svc.On("ProcessEvent", mock.Anything, mock.Anything).Return(errors.New("dynamo unavailable"))

	rr := postWebhook(h, body, signPayload(body, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"received":true}`, rr.Body.String())
}

func TestHandleStripe_UnknownEventTypeAcked(t *testing.T) {
	svc := new(mockBillingService)
	h := NewWebhookHandler(svc, testWebhookSecret)

	body := eventBody("charge.refunded")
	svc.On("ProcessEvent", mock.Anything, mock.Anything).Return(nil)

	rr := postWebhook(h, body, signPayload(body, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"received":true}`, rr.Body.String())
}
