package checkout

// PaymentStatus tracks whether the charge behind an order has cleared.
// pending -> succeeded and pending -> failed are the only transitions;
// both end states are terminal.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Terminal reports whether no further payment transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSucceeded || s == PaymentFailed
}

// FulfillmentStatus is the logistics state of an order. It advances strictly
// linearly under admin control and is independent of payment status (a
// cash-on-delivery order can be packed before any payment clears).
type FulfillmentStatus string

const (
	FulfillmentPending        FulfillmentStatus = "pending"
	FulfillmentPacked         FulfillmentStatus = "packed"
	FulfillmentShipped        FulfillmentStatus = "shipped"
	FulfillmentOutForDelivery FulfillmentStatus = "out-for-delivery"
	FulfillmentDelivered      FulfillmentStatus = "delivered"
)

var fulfillmentOrder = []FulfillmentStatus{
	FulfillmentPending,
	FulfillmentPacked,
	FulfillmentShipped,
	FulfillmentOutForDelivery,
	FulfillmentDelivered,
}

// ValidFulfillment reports whether s names a known fulfillment state.
func ValidFulfillment(s FulfillmentStatus) bool {
	for _, v := range fulfillmentOrder {
		if v == s {
			return true
		}
	}
	return false
}

// NextFulfillment returns the single state an order may advance to from
// 'current'. ok is false when current is terminal or unknown.
func NextFulfillment(current FulfillmentStatus) (FulfillmentStatus, bool) {
	for i, v := range fulfillmentOrder {
		if v == current && i+1 < len(fulfillmentOrder) {
			return fulfillmentOrder[i+1], true
		}
	}
	return "", false
}
