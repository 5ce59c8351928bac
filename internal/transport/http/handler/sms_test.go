package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cheflamb/brigade-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) (string, error) {
	args := m.Called(ctx, to, message)
	return args.String(0), args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) HandleInboundSMS(ctx context.Context, from, body string) (bool, error) {
	args := m.Called(ctx, from, body)
	return args.Bool(0), args.Error(1)
}

func TestSMSSend_ValidRequest(t *testing.T) {
	sender := new(mockSMSSender)
	h := NewSMSHandler(sender, nil)

	sender.On("SendSMS", mock.Anything, "+15551234567", "dinner service starts now").
		Return("sns-msg-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/send",
		strings.NewReader(`{"to":"+15551234567","message":"dinner service starts now"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message_id":"sns-msg-1","status":"sent"}`, rr.Body.String())
	sender.AssertExpectations(t)
}

func TestSMSSend_InvalidPhone(t *testing.T) {
	sender := new(mockSMSSender)
	h := NewSMSHandler(sender, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/send",
		strings.NewReader(`{"to":"555-1234","message":"hi"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestSMSSend_MessageTooLong(t *testing.T) {
	sender := new(mockSMSSender)
	h := NewSMSHandler(sender, nil)

	long := strings.Repeat("x", 161)
	req := httptest.NewRequest(http.MethodPost, "/v1/sms/send",
		strings.NewReader(`{"to":"+15551234567","message":"`+long+`"}`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	sender.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestSMSSend_MalformedBody(t *testing.T) {
	sender := new(mockSMSSender)
	h := NewSMSHandler(sender, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/send", strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSMSInbound_OptOut(t *testing.T) {
	svc := new(mockNotificationService)
	h := NewSMSHandler(nil, svc)

	svc.On("HandleInboundSMS", mock.Anything, "+15551234567", "STOP").Return(true, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/inbound",
		strings.NewReader(`{"from":"+15551234567","body":"STOP"}`))
	rr := httptest.NewRecorder()
	h.Inbound(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"opt_out":true}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestSMSInbound_UnknownNumberStillAcked(t *testing.T) {
	svc := new(mockNotificationService)
	h := NewSMSHandler(nil, svc)

	svc.On("HandleInboundSMS", mock.Anything, "+15559999999", "STOP").
		Return(false, domain.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/inbound",
		strings.NewReader(`{"from":"+15559999999","body":"STOP"}`))
	rr := httptest.NewRecorder()
	h.Inbound(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"opt_out":false}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestSMSInbound_RegularMessage(t *testing.T) {
	svc := new(mockNotificationService)
	h := NewSMSHandler(nil, svc)

	svc.On("HandleInboundSMS", mock.Anything, "+15551234567", "what time is the live?").Return(false, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sms/inbound",
		strings.NewReader(`{"from":"+15551234567","body":"what time is the live?"}`))
	rr := httptest.NewRecorder()
	h.Inbound(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"opt_out":false}`, rr.Body.String())
}
