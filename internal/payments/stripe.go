package payments

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements Gateway against Stripe PaymentIntents.
type StripeGateway struct {
	intents       paymentintent.Client
	webhookSecret string
}

// NewStripeGateway builds a gateway with a 10 second request timeout and a
// single retry on transient network failure. Anything that still fails is
// surfaced to the caller, never silently swallowed.
func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 10 * time.Second},
		MaxNetworkRetries: stripe.Int64(1),
	})

	return &StripeGateway{
		intents:       paymentintent.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// CreateIntent translates an internal charge request into a Stripe
// PaymentIntent. Provider errors are logged and normalized.
func (g *StripeGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountPence),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String("SupremeDistro order"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		log.Printf("stripe: payment intent creation failed: %v", err)
		return nil, ErrGatewayUnavailable
	}

	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw body and
// maps the event onto the internal taxonomy. Event types the order ledger
// does not track come back as EventIgnored so the receiver can acknowledge
// them without acting.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		log.Printf("stripe: webhook signature verification failed: %v", err)
		return nil, ErrBadSignature
	}

	var typ EventType
	switch string(event.Type) {
	case "payment_intent.succeeded":
		typ = EventPaymentSucceeded
	case "payment_intent.payment_failed":
		typ = EventPaymentFailed
	default:
		return &Event{ID: event.ID, Type: EventIgnored}, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		// Verified but unparseable: acknowledge, log for reconciliation.
		log.Printf("stripe: could not parse payment intent from event %s: %v", event.ID, err)
		return &Event{ID: event.ID, Type: EventIgnored}, nil
	}

	return &Event{ID: event.ID, Type: typ, IntentID: pi.ID}, nil
}
