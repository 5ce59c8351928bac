package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Failure modes specific to billing and notification delivery.
var (
	// ErrSignatureInvalid means a webhook payload failed signature verification.
	// Mapped to 400 with no state mutation.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrUserNotFound means a webhook event referenced a customer/email with no
	// matching profile. Logged and dropped; webhooks still ack 200.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPhoneNumber means an SMS destination is not E.164.
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrMessageTooLong means an SMS body exceeds the single-segment limit.
	// There is no auto-truncation.
	ErrMessageTooLong = errors.New("message too long")

	// ErrProviderFailure wraps any vendor transport error. Surfaced as 500 to
	// direct API callers, swallowed to 200 inside webhook handlers.
	ErrProviderFailure = errors.New("provider failure")
)
