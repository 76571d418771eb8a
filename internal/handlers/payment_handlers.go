package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/supremedistro/supremedistro-api/internal/checkout"
	"github.com/supremedistro/supremedistro-api/internal/models"
	"github.com/supremedistro/supremedistro-api/internal/payments"
)

// CreateIntentInput is the body for POST /v1/payment/create-intent.
// Any amount the client might send is ignored; the server reprices the cart.
type CreateIntentInput struct {
	Items           []CheckoutItemInput    `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

// CreatePaymentIntent is the checkout orchestrator for card payments:
// validate, price the cart, set up the gateway intent, then persist the
// order in 'pending' payment state carrying the intent's correlation id.
// The webhook receiver moves payment status from there.
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input CreateIntentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 1. Reject before any side effect. This applies to wallet payments
	// (Apple/Google Pay) too: the address requirement is checked here, at
	// intent creation, for every payment path.
	if !input.ShippingAddress.Complete() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address is required."})
		return
	}

	// 2. Price the cart server-side
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

	// 3. Set up the gateway intent. The order reference goes into the intent
	// metadata so the payment shows up attributably in the gateway dashboard.
	reference := uuid.New().String()
	intent, err := h.Gateway.CreateIntent(c, payments.IntentRequest{
		AmountPence: totals.TotalPence,
		Currency:    "gbp",
		Metadata: map[string]string{
			"reference": reference,
			"name":      input.ShippingAddress.FullName,
			"email":     input.ShippingAddress.Email,
			"phone":     input.ShippingAddress.Phone,
		},
	})
	if err != nil {
		// Normalized by the adapter; detail is already logged server-side.
		c.JSON(http.StatusBadGateway, gin.H{"error": payments.ErrGatewayUnavailable.Error()})
		return
	}

	// 4. Persist the order in pending payment state with the correlation id
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}
	orderID, err := h.createOrderTx(c, userID, reference, input.ShippingAddress,
		lines, totals, paymentMethod, &intent.ID)
	if err != nil {
		// The intent exists but the order does not; the sweep log plus the
		// gateway dashboard is the reconciliation path for this edge.
		if errors.Is(err, errInsufficientStock) {
			h.rejectCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"clientSecret": intent.ClientSecret,
		"orderId":      orderID,
	})
}
