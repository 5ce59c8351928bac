package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cheflamb/brigade-api/internal/application/notification"
	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/pkg/validate"
	"github.com/cheflamb/brigade-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// PushSubscriptionHandler handles push token registration endpoints.
type PushSubscriptionHandler struct {
	svc notification.Service
}

func NewPushSubscriptionHandler(svc notification.Service) *PushSubscriptionHandler {
	return &PushSubscriptionHandler{svc: svc}
}

func (h *PushSubscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.RegisterPushSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, err := h.svc.RegisterPushSubscription(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *PushSubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	subs, err := h.svc.ListPushSubscriptions(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *PushSubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.RemovePushSubscription(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "subscription removed"})
}
