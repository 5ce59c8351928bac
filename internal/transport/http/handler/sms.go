package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/cheflamb/brigade-api/internal/infrastructure/sns"
)

// InboundSMSProcessor is the slice of the notification service the inbound
// endpoint needs.
type InboundSMSProcessor interface {
	HandleInboundSMS(ctx context.Context, from, body string) (bool, error)
}

// SMSHandler handles direct SMS send and inbound message endpoints.
type SMSHandler struct {
	sender sns.SMSSender
	svc    InboundSMSProcessor
}

func NewSMSHandler(sender sns.SMSSender, svc InboundSMSProcessor) *SMSHandler {
	return &SMSHandler{sender: sender, svc: svc}
}

type sendSMSRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// Send pushes one SMS straight to the provider. Admin only; normal traffic
// goes through the notification dispatcher instead.
func (h *SMSHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := sns.Validate(req.To, req.Message); err != nil {
		httpError(w, err)
		return
	}
	messageID, err := h.sender.SendSMS(r.Context(), req.To, req.Message)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SMSSendEnvelope{Success: true, MessageID: messageID, Status: "sent"})
}

type inboundSMSRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Inbound receives provider callbacks for incoming SMS. Only STOP-word
// opt-outs are acted on; everything else is acknowledged and dropped.
func (h *SMSHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	var req inboundSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	optedOut, err := h.svc.HandleInboundSMS(r.Context(), req.From, req.Body)
	if err != nil {
		// A STOP from a number we don't know still gets acked: a non-2xx
		// here only makes the provider retry or alert on a vendor callback.
		if errors.Is(err, domain.ErrUserNotFound) {
			slog.Warn("inbound SMS from unknown number", "err", err)
			writeJSON(w, http.StatusOK, map[string]bool{"opt_out": false})
			return
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"opt_out": optedOut})
}
