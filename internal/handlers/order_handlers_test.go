package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_IncompleteAddressPersistsNothing(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"products":      []map[string]interface{}{{"productId": 1, "quantity": 1}},
		"paymentMethod": "cod",
		"shippingAddress": map[string]interface{}{
			"fullName": "Ada Lovelace",
			"phone":    "07000000000",
			// No addressLine, city, postalCode, country
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_CashOnDelivery(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(1)).
		WillReturnRows(checkoutProductRow(500, nil, 10, false, nil))

	mock.ExpectBegin()
	// payment_intent_id is NULL for offline methods
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(11), int64(1), 2, int64(500)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE products SET stock").
		WithArgs(2, int64(1), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"products":        []map[string]interface{}{{"productId": 1, "quantity": 2}},
		"paymentMethod":   "cod",
		"shippingAddress": completeAddress,
	})

	resp := mustStatus(t, w, http.StatusCreated)
	assert.Equal(t, float64(11), resp["orderId"])
	// 500*2 = 1000 subtotal, 200 tax => 1200
	assert.Equal(t, float64(1200), resp["totalPence"])
	assert.Equal(t, "pending", resp["paymentStatus"])
	assert.Equal(t, "pending", resp["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	// Empty result set surfaces as sql.ErrNoRows on Scan
	mock.ExpectQuery("SELECT daily_price_pence").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"daily_price_pence", "off_sale_price_pence", "stock", "is_deal_of_day", "expiry_date"}))

	w := doJSON(t, r, http.MethodPost, "/orders", map[string]interface{}{
		"products":        []map[string]interface{}{{"productId": 99, "quantity": 1}},
		"paymentMethod":   "cod",
		"shippingAddress": completeAddress,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_OnlyNextStepAccepted(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	// pending -> shipped skips 'packed' and must be refused
	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	w := doJSON(t, r, http.MethodPatch, "/orders/5/status", map[string]interface{}{"status": "shipped"})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_AdvancesOneStep(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("packed", sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, r, http.MethodPatch, "/orders/5/status", map[string]interface{}{"status": "packed"})

	resp := mustStatus(t, w, http.StatusOK)
	assert.Equal(t, "packed", resp["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_DeliveredIsTerminal(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	mock.ExpectQuery("SELECT status FROM orders").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("delivered"))

	w := doJSON(t, r, http.MethodPatch, "/orders/5/status", map[string]interface{}{"status": "delivered"})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatus_UnknownStatusRejected(t *testing.T) {
	h, mock := newTestHandlers(t, &fakeGateway{})
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodPatch, "/orders/5/status", map[string]interface{}{"status": "teleported"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
