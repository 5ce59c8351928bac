package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cheflamb/brigade-api/internal/application/billing"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stripe/stripe-go/v83/webhook"
)

// Stripe caps webhook payloads well under this.
const maxWebhookBody = 1 << 16

// WebhookHandler receives Stripe webhook deliveries.
type WebhookHandler struct {
	svc           billing.Service
	webhookSecret string
}

func NewWebhookHandler(svc billing.Service, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{svc: svc, webhookSecret: webhookSecret}
}

// HandleStripe verifies the signature, dispatches the event and always acks
// with 200 once the signature checked out. Handler failures are logged, not
// surfaced: a non-2xx would make Stripe retry an event we already consumed.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not read request body")
		return
	}

	// The API version drifts whenever Stripe upgrades the endpoint pin; a
	// mismatch must not 400 every retry of an otherwise-valid delivery.
	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		slog.Warn("webhook signature rejected", "err", err)
		httpError(w, fmt.Errorf("verify payload: %w", domain.ErrSignatureInvalid))
		return
	}

	if err := h.svc.ProcessEvent(r.Context(), &event); err != nil {
		slog.Error("webhook handler failed", "event_type", event.Type, "event_id", event.ID, "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
