package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cheflamb/brigade-api/internal/application/billing"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/transport/http/middleware"
)

// UserGetter is the slice of the user store the billing handler needs.
type UserGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// BillingHandler handles customer-facing billing endpoints.
type BillingHandler struct {
	svc     billing.Service
	users   UserGetter
	baseURL string
}

func NewBillingHandler(svc billing.Service, users UserGetter, baseURL string) *BillingHandler {
	return &BillingHandler{svc: svc, users: users, baseURL: baseURL}
}

type portalRequest struct {
	ReturnURL string `json:"return_url"`
}

// Portal creates a Stripe billing-portal session for the caller. The customer
// id always comes from the caller's own profile, never from the request.
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req portalRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.ReturnURL == "" {
		req.ReturnURL = h.baseURL + "/dashboard"
	}

	user, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	if user.StripeCustomerID == "" {
		writeError(w, http.StatusBadRequest, "no billing profile on file")
		return
	}
	url, err := h.svc.PortalURL(r.Context(), user.StripeCustomerID, req.ReturnURL)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: url})
}
