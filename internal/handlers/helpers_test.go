package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/supremedistro/supremedistro-api/internal/payments"
)

// fakeGateway stubs the payment processor so handler tests never touch the
// network.
type fakeGateway struct {
	createFunc  func(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error)
	verifyFunc  func(payload []byte, sigHeader string) (*payments.Event, error)
	createCalls int
}

func (f *fakeGateway) CreateIntent(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	f.createCalls++
	if f.createFunc != nil {
		return f.createFunc(ctx, req)
	}
	return &payments.Intent{ID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (f *fakeGateway) VerifyEvent(payload []byte, sigHeader string) (*payments.Event, error) {
	if f.verifyFunc != nil {
		return f.verifyFunc(payload, sigHeader)
	}
	return &payments.Event{ID: "evt_test", Type: payments.EventIgnored}, nil
}

// newTestHandlers wires a Handlers struct onto a sqlmock connection.
func newTestHandlers(t *testing.T, gw payments.Gateway) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Handlers{DB: db, Gateway: gw}, mock
}

// newTestRouter registers the handler routes with a stub identity in place
// of the auth middleware.
func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", int64(7))
		c.Set("userRole", "admin")
	})
	r.POST("/payment/create-intent", h.CreatePaymentIntent)
	r.POST("/payment/webhook", h.PaymentWebhook)
	r.POST("/orders", h.CreateOrder)
	r.GET("/orders/user", h.GetMyOrders)
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// checkoutProductRow builds the row set loadCheckoutLines selects per product.
func checkoutProductRow(dailyPrice int64, offSale interface{}, stock int, isDeal bool, expiry interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"daily_price_pence", "off_sale_price_pence", "stock", "is_deal_of_day", "expiry_date"}).
		AddRow(dailyPrice, offSale, stock, isDeal, expiry)
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) map[string]interface{} {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
