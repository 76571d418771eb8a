package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supremedistro/supremedistro-api/internal/checkout"
	"github.com/supremedistro/supremedistro-api/internal/payments"
)

// Webhook bodies are small event envelopes; anything bigger is not ours.
const maxWebhookBody = 64 * 1024

// PaymentWebhook is the handler for POST /v1/payment/webhook.
//
// Signature verification against the raw body is the endpoint's only
// authentication. Once a signature verifies we always acknowledge with
// {"received": true}, even if the internal update fails, so the gateway
// never retries a permanently-unresolvable event; internal failures are
// logged for manual reconciliation instead.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read request body"})
		return
	}

	event, err := h.Gateway.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook signature verification failed"})
		return
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		h.applyPaymentStatus(c, event.ID, event.IntentID, checkout.PaymentSucceeded)
	case payments.EventPaymentFailed:
		h.applyPaymentStatus(c, event.ID, event.IntentID, checkout.PaymentFailed)
	default:
		// Verified but irrelevant event type: acknowledge and move on.
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// applyPaymentStatus moves an order's payment status by correlation id. The
// UPDATE is guarded on payment_status='pending', which makes duplicate
// deliveries a 0-row no-op and keeps succeeded/failed terminal. Errors are
// logged, never surfaced: the caller acknowledges regardless.
func (h *Handlers) applyPaymentStatus(ctx context.Context, eventID, intentID string, status checkout.PaymentStatus) {
	if intentID == "" {
		log.Printf("webhook event %s carries no payment intent id, ignoring", eventID)
		return
	}

	res, err := h.DB.ExecContext(ctx,
		"UPDATE orders SET payment_status = ?, updated_at = ? WHERE payment_intent_id = ? AND payment_status = ?",
		status, time.Now(), intentID, checkout.PaymentPending,
	)
	if err != nil {
		log.Printf("webhook event %s: failed to update order for intent %s: %v (needs manual reconciliation)",
			eventID, intentID, err)
		return
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Either a duplicate delivery (already terminal) or an intent we
		// never created an order for. Both are acknowledged, not errors.
		log.Printf("webhook event %s: no pending order for intent %s", eventID, intentID)
		return
	}

	log.Printf("order with intent %s moved to payment_status=%s", intentID, status)
}
