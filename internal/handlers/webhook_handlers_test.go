package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supremedistro/supremedistro-api/internal/payments"
)

func succeededEvent(intentID string) func([]byte, string) (*payments.Event, error) {
	return func(payload []byte, sigHeader string) (*payments.Event, error) {
		return &payments.Event{ID: "evt_1", Type: payments.EventPaymentSucceeded, IntentID: intentID}, nil
	}
}

func TestPaymentWebhook_InvalidSignatureNeverMutates(t *testing.T) {
	gw := &fakeGateway{
		verifyFunc: func(payload []byte, sigHeader string) (*payments.Event, error) {
			return nil, payments.ErrBadSignature
		},
	}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "pi_forged"}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// No SQL of any kind was issued.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_SucceededMovesPendingOrder(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{verifyFunc: succeededEvent("pi_123")})
	r := newTestRouter(h)

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs("succeeded", sqlmock.AnyArg(), "pi_123", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, true, resp["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{verifyFunc: succeededEvent("pi_123")})
	r := newTestRouter(h)

	// The order is already terminal, so the guarded UPDATE matches nothing.
	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs("succeeded", sqlmock.AnyArg(), "pi_123", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, true, resp["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_UnknownIntentAcknowledged(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{verifyFunc: succeededEvent("pi_nobody_knows")})
	r := newTestRouter(h)

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs("succeeded", sqlmock.AnyArg(), "pi_nobody_knows", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	// Acknowledged despite no matching order, so the gateway stops retrying.
	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, true, resp["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_FailedEventMarksPaymentFailed(t *testing.T) {
	gw := &fakeGateway{
		verifyFunc: func(payload []byte, sigHeader string) (*payments.Event, error) {
			return &payments.Event{ID: "evt_2", Type: payments.EventPaymentFailed, IntentID: "pi_456"}, nil
		},
	}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	// Only payment_status moves; fulfillment status is untouched by webhooks.
	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs("failed", sqlmock.AnyArg(), "pi_456", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	mustStatus(t, w, http.StatusOK)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_IrrelevantEventTypeAcknowledged(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{}) // Default verify: EventIgnored
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, true, resp["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentWebhook_InternalFailureStillAcknowledged(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{verifyFunc: succeededEvent("pi_123")})
	r := newTestRouter(h)

	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs("succeeded", sqlmock.AnyArg(), "pi_123", "pending").
		WillReturnError(assert.AnError)

	w := doJSON(t, r, http.MethodPost, "/payment/webhook", map[string]interface{}{"ok": true})

	// DB failure is logged for manual reconciliation, never bounced back to
	// the gateway.
	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, true, resp["received"])
	require.NoError(t, mock.ExpectationsWereMet())
}
