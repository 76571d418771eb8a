package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supremedistro/supremedistro-api/internal/checkout"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

var (
	errUnknownProduct    = errors.New("unknown product in cart")
	errInsufficientStock = errors.New("insufficient stock")
)

// CheckoutItemInput is one cart line as submitted by the client. The client
// never sends prices; the server reprices every line from the catalog.
type CheckoutItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput is the body for POST /v1/orders (offline payment methods).
type CreateOrderInput struct {
	Items           []CheckoutItemInput    `json:"products" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

// loadCheckoutLines prices the submitted cart against the products table and
// checks stock up front. Races on stock are re-checked inside the order
// transaction; this early check just fails fast.
func (h *Handlers) loadCheckoutLines(ctx context.Context, items []CheckoutItemInput) ([]checkout.Line, error) {
	now := time.Now()
	lines := make([]checkout.Line, 0, len(items))

	for _, item := range items {
		var dailyPrice int64
		var offSalePrice *int64
		var stock int
		var isDeal bool
		var expiry *time.Time

		err := h.DB.QueryRowContext(ctx,
			`SELECT daily_price_pence, off_sale_price_pence, stock, is_deal_of_day, expiry_date
			 FROM products WHERE id = ?`,
			item.ProductID,
		).Scan(&dailyPrice, &offSalePrice, &stock, &isDeal, &expiry)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id %d", errUnknownProduct, item.ProductID)
		}
		if err != nil {
			return nil, err
		}

		if stock < item.Quantity {
			return nil, fmt.Errorf("%w for product ID %d", errInsufficientStock, item.ProductID)
		}

		lines = append(lines, checkout.Line{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPricePence: checkout.UnitPricePence(dailyPrice, offSalePrice),
			ActiveDeal:     checkout.DealActive(isDeal, expiry, now),
		})
	}

	return lines, nil
}

// createOrderTx persists an order, its line items and the stock decrement in
// a single transaction. The stock UPDATE is guarded so a concurrent checkout
// cannot drive stock negative.
func (h *Handlers) createOrderTx(ctx context.Context, userID int64, reference string,
	addr models.ShippingAddress, lines []checkout.Line, totals checkout.Totals,
	paymentMethod string, paymentIntentID *string) (int64, error) {

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Safety net

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (reference, user_id, status, payment_status, payment_method, payment_intent_id,
			total_pence, ship_full_name, ship_email, ship_phone, ship_address_line, ship_city,
			ship_postal_code, ship_country, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reference, userID, checkout.FulfillmentPending, checkout.PaymentPending, paymentMethod, paymentIntentID,
		totals.TotalPence, addr.FullName, addr.Email, addr.Phone, addr.AddressLine, addr.City,
		addr.PostalCode, addr.Country, now, now,
	)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, line := range lines {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, quantity, unit_price_pence) VALUES (?, ?, ?, ?)",
			orderID, line.ProductID, line.Quantity, line.UnitPricePence,
		); err != nil {
			return 0, err
		}

		stockRes, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			line.Quantity, line.ProductID, line.Quantity,
		)
		if err != nil {
			return 0, err
		}
		if n, _ := stockRes.RowsAffected(); n == 0 {
			return 0, fmt.Errorf("%w for product ID %d", errInsufficientStock, line.ProductID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

// CreateOrder is the handler for POST /v1/orders.
// Used for payment methods that never touch the gateway (cash on delivery,
// PayPal handled client-side); card checkouts go through
// POST /v1/payment/create-intent instead.
func (h *Handlers) CreateOrder(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate before any side effect
	if !input.ShippingAddress.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required."})
		return
	}

	lines, err := h.loadCheckoutLines(c, input.Items)
	if err != nil {
		h.rejectCheckoutError(c, err)
		return
	}

	totals, err := checkout.ComputeTotals(lines)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID, err := h.createOrderTx(c, userID, uuid.New().String(), input.ShippingAddress,
		lines, totals, input.PaymentMethod, nil)
	if err != nil {
		h.rejectCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId":       orderID,
		"totalPence":    totals.TotalPence,
		"paymentStatus": checkout.PaymentPending,
		"status":        checkout.FulfillmentPending,
	})
}

// rejectCheckoutError maps checkout failures onto the right status codes.
func (h *Handlers) rejectCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnknownProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
	}
}

// loadOrderItems attaches line items (with product names) to an order.
func (h *Handlers) loadOrderItems(orderID int64) ([]models.OrderItem, error) {
	rows, err := h.DB.Query(
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price_pence, COALESCE(p.name, '')
		 FROM order_items oi
		 LEFT JOIN products p ON oi.product_id = p.id
		 WHERE oi.order_id = ?`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPricePence, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

const orderColumns = `id, reference, user_id, status, payment_status, payment_method, payment_intent_id,
	total_pence, ship_full_name, ship_email, ship_phone, ship_address_line, ship_city, ship_postal_code,
	ship_country, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentIntentID,
		&o.TotalPence, &o.ShippingAddress.FullName, &o.ShippingAddress.Email, &o.ShippingAddress.Phone,
		&o.ShippingAddress.AddressLine, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// GetMyOrders is the handler for GET /v1/orders/user
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.Query(
		"SELECT "+orderColumns+" FROM orders WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}

	for i := range orders {
		items, err := h.loadOrderItems(orders[i].ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
			return
		}
		orders[i].Items = items
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders is the handler for GET /v1/orders/admin
func (h *Handlers) GetAllOrders(c *gin.Context) {
	rows, err := h.DB.Query(
		`SELECT o.id, o.reference, o.user_id, o.status, o.payment_status, o.payment_method, o.payment_intent_id,
			o.total_pence, o.ship_full_name, o.ship_email, o.ship_phone, o.ship_address_line, o.ship_city,
			o.ship_postal_code, o.ship_country, o.created_at, o.updated_at, u.name, u.email
		 FROM orders o
		 JOIN users u ON o.user_id = u.id
		 ORDER BY o.created_at DESC`,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.Reference, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.PaymentIntentID,
			&o.TotalPence, &o.ShippingAddress.FullName, &o.ShippingAddress.Email, &o.ShippingAddress.Phone,
			&o.ShippingAddress.AddressLine, &o.ShippingAddress.City, &o.ShippingAddress.PostalCode,
			&o.ShippingAddress.Country, &o.CreatedAt, &o.UpdatedAt, &o.CustomerName, &o.CustomerEmail,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		orders = append(orders, o)
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PATCH /v1/orders/:id/status (admin).
// Fulfillment advances strictly one step at a time and never depends on
// payment status.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requested := checkout.FulfillmentStatus(input.Status)
	if !checkout.ValidFulfillment(requested) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown fulfillment status"})
		return
	}

	var current string
	err = h.DB.QueryRow("SELECT status FROM orders WHERE id = ?", id).Scan(&current)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	next, ok := checkout.NextFulfillment(checkout.FulfillmentStatus(current))
	if !ok || next != requested {
		c.JSON(http.StatusConflict, gin.H{
			"error": fmt.Sprintf("Cannot move order from '%s' to '%s'", current, requested),
		})
		return
	}

	if _, err := h.DB.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		requested, time.Now(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": requested})
}

// ProcessOverduePayments is run hourly by the background worker in main.
// It lists orders stuck in payment_status=pending for over 24 hours so an
// operator can reconcile them against the gateway dashboard. It never forces
// a transition; only a verified webhook may move payment status.
func (h *Handlers) ProcessOverduePayments() {
	cutoff := time.Now().Add(-24 * time.Hour)

	rows, err := h.DB.Query(
		`SELECT id, reference, payment_intent_id, created_at
		 FROM orders
		 WHERE payment_status = ? AND created_at < ?`,
		checkout.PaymentPending, cutoff,
	)
	if err != nil {
		log.Printf("overdue payment sweep failed: %v", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		var reference string
		var intentID *string
		var createdAt time.Time
		if err := rows.Scan(&id, &reference, &intentID, &createdAt); err != nil {
			log.Printf("overdue payment sweep: scan failed: %v", err)
			return
		}

		intent := "(none)"
		if intentID != nil {
			intent = *intentID
		}
		log.Printf("order %d (%s) pending payment since %s, intent %s: needs manual reconciliation",
			id, reference, createdAt.Format(time.RFC3339), intent)
		count++
	}

	if count > 0 {
		log.Printf("overdue payment sweep: %d order(s) flagged", count)
	}
}
