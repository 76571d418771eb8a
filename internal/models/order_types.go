package models

import (
	"time"
)

// ShippingAddress is the address snapshot embedded in an order row.
// It is copied at creation time, not a live reference to the addresses table.
type ShippingAddress struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

// Complete reports whether every required postal field is present.
// Email is optional (guest checkouts may not have one on file).
func (a ShippingAddress) Complete() bool {
	return a.FullName != "" &&
		a.Phone != "" &&
		a.AddressLine != "" &&
		a.City != "" &&
		a.PostalCode != "" &&
		a.Country != ""
}

// Order is the model for the 'orders' table.
// Fulfillment 'status' and 'paymentStatus' evolve independently.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	Reference       string          `json:"reference" db:"reference"` // Public UUID, also sent to Stripe as metadata
	UserID          int64           `json:"userId" db:"user_id"`
	Status          string          `json:"status" db:"status"`                               // pending -> packed -> shipped -> out-for-delivery -> delivered
	PaymentStatus   string          `json:"paymentStatus" db:"payment_status"`                // pending -> succeeded | failed
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`                // Label only: card, paypal, cod
	PaymentIntentID *string         `json:"paymentIntentId,omitempty" db:"payment_intent_id"` // Gateway correlation id, NULL for offline methods
	TotalPence      int64           `json:"totalPence" db:"total_pence"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"-"`
	Items           []OrderItem     `json:"items" db:"-"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually for the admin listing)
	CustomerName  string `json:"customerName,omitempty" db:"-"`
	CustomerEmail string `json:"customerEmail,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID             int64  `json:"id" db:"id"`
	OrderID        int64  `json:"orderId" db:"order_id"`
	ProductID      int64  `json:"productId" db:"product_id"`
	Quantity       int    `json:"quantity" db:"quantity"`
	UnitPricePence int64  `json:"unitPricePence" db:"unit_price_pence"` // Price at the time of purchase
	ProductName    string `json:"productName,omitempty" db:"-"`
}
