// Package payments wraps the external payment processor behind a small
// gateway interface so handlers never touch provider types directly and
// provider failures never reach the customer un-normalized.
package payments

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable is the single error surfaced to callers when the
// provider rejects or the network fails. Provider detail is logged
// server-side only.
var ErrGatewayUnavailable = errors.New("payment setup failed")

// ErrBadSignature means a webhook payload failed signature verification and
// must not be trusted in any way.
var ErrBadSignature = errors.New("invalid webhook signature")

// IntentRequest describes a charge to set up with the provider.
// Amounts are integer pence (the provider's smallest-subunit convention).
type IntentRequest struct {
	AmountPence int64
	Currency    string
	Metadata    map[string]string
}

// Intent is the provider's in-progress charge: a correlation id the webhook
// receiver will see again, plus the secret the client uses to confirm.
type Intent struct {
	ID           string
	ClientSecret string
}

// EventType classifies verified webhook events into the few cases the order
// ledger cares about.
type EventType string

const (
	EventPaymentSucceeded EventType = "payment.succeeded"
	EventPaymentFailed    EventType = "payment.failed"
	EventIgnored          EventType = "ignored"
)

// Event is a signature-verified webhook event.
type Event struct {
	ID       string
	Type     EventType
	IntentID string
}

// Gateway is the payment processor adapter.
type Gateway interface {
	// CreateIntent sets up a charge and returns its client secret and
	// correlation id. Implementations bound the call with a timeout and
	// retry once on transient network failure.
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)

	// VerifyEvent checks the signature header against the raw, unparsed
	// request body and returns the normalized event. It must be the only
	// path by which webhook content is trusted.
	VerifyEvent(payload []byte, sigHeader string) (*Event, error)
}
