package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supremedistro/supremedistro-api/internal/payments"
)

var completeAddress = map[string]interface{}{
	"fullName":    "Ada Lovelace",
	"email":       "ada@example.com",
	"phone":       "07000000000",
	"addressLine": "1 Analytical Row",
	"city":        "London",
	"postalCode":  "EC1A 1BB",
	"country":     "GB",
}

func TestCreatePaymentIntent_IncompleteAddressRejectedBeforeGateway(t *testing.T) {
	gw := &fakeGateway{}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/payment/create-intent", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 1, "quantity": 2}},
		"shippingAddress": map[string]interface{}{"fullName": "Ada Lovelace"}, // Missing everything else
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, gw.createCalls, "gateway must not be contacted")
	require.NoError(t, mock.ExpectationsWereMet(), "nothing may be persisted")
}

func TestCreatePaymentIntent_GatewayFailureLeavesNoOrder(t *testing.T) {
	gw := &fakeGateway{
		createFunc: func(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
			return nil, payments.ErrGatewayUnavailable
		},
	}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(1)).
		WillReturnRows(checkoutProductRow(1000, nil, 5, false, nil))

	w := doJSON(t, r, http.MethodPost, "/payment/create-intent", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 1, "quantity": 2}},
		"shippingAddress": completeAddress,
	})

	resp := mustStatus(t, w, http.StatusBadGateway)
	assert.Equal(t, "payment setup failed", resp["error"])
	// No transaction was opened, so no partial order exists.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	var captured payments.IntentRequest
	gw := &fakeGateway{
		createFunc: func(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
			captured = req
			return &payments.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	// 10.00 each, qty 2 => subtotal 2000, tax 400, total 2400 pence
	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(1)).
		WillReturnRows(checkoutProductRow(1000, nil, 5, false, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(42), int64(1), 2, int64(1000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPost, "/payment/create-intent", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 1, "quantity": 2}},
		"shippingAddress": completeAddress,
	})

	resp := mustStatus(t, w, http.StatusCreated)
	assert.Equal(t, "pi_123_secret", resp["clientSecret"])
	assert.Equal(t, float64(42), resp["orderId"])

	// The gateway was charged the server-computed total, in pence.
	assert.Equal(t, int64(2400), captured.AmountPence)
	assert.Equal(t, "gbp", captured.Currency)
	assert.Equal(t, "Ada Lovelace", captured.Metadata["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentIntent_DealSavingsApplied(t *testing.T) {
	var captured payments.IntentRequest
	gw := &fakeGateway{
		createFunc: func(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
			captured = req
			return &payments.Intent{ID: "pi_deal", ClientSecret: "pi_deal_secret"}, nil
		},
	}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	// Deal of the day with no expiry: subtotal 1000, tax 200, savings 100
	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(3)).
		WillReturnRows(checkoutProductRow(1000, nil, 2, true, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE products SET stock").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPost, "/payment/create-intent", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 3, "quantity": 1}},
		"shippingAddress": completeAddress,
	})

	mustStatus(t, w, http.StatusCreated)
	assert.Equal(t, int64(1100), captured.AmountPence)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePaymentIntent_OutOfStockConflict(t *testing.T) {
	gw := &fakeGateway{}
	h, mock := newTestHandlers(t, gw)
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(1)).
		WillReturnRows(checkoutProductRow(1000, nil, 1, false, nil))

	w := doJSON(t, r, http.MethodPost, "/payment/create-intent", map[string]interface{}{
		"items":           []map[string]interface{}{{"productId": 1, "quantity": 3}},
		"shippingAddress": completeAddress,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, gw.createCalls, "no intent for an unfillable cart")
	require.NoError(t, mock.ExpectationsWereMet())
}
