package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/infrastructure/fcm"
)

// SubscriptionLister is the slice of the push-subscription store the direct
// push endpoint needs for user fan-out.
type SubscriptionLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
}

// PushHandler handles the direct push-send endpoint.
type PushHandler struct {
	sender fcm.PushSender
	subs   SubscriptionLister
}

func NewPushHandler(sender fcm.PushSender, subs SubscriptionLister) *PushHandler {
	return &PushHandler{sender: sender, subs: subs}
}

type sendPushRequest struct {
	UserID  string          `json:"user_id"`
	Token   string          `json:"token"`
	Payload fcm.PushPayload `json:"payload"`
}

// Send delivers one payload straight to a registration token, or to every
// enabled token of a user when user_id is given instead. Admin only.
func (h *PushHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Payload.Title == "" {
		writeError(w, http.StatusBadRequest, "payload.title is required")
		return
	}

	if req.Token != "" {
		messageID, err := h.sender.SendPush(r.Context(), req.Token, req.Payload)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, PushSendEnvelope{Success: true, Result: map[string]string{"message_id": messageID}})
		return
	}

	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "either token or user_id is required")
		return
	}
	subs, err := h.subs.ListByUser(r.Context(), req.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	sent := 0
	for _, sub := range subs {
		if !sub.Enable {
			continue
		}
		if _, err := h.sender.SendPush(r.Context(), sub.Token, req.Payload); err == nil {
			sent++
		}
	}
	writeJSON(w, http.StatusOK, PushSendEnvelope{Success: true, Result: map[string]int{"sent": sent}})
}
