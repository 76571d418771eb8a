package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFulfillmentAdvancesLinearly(t *testing.T) {
	steps := []FulfillmentStatus{
		FulfillmentPending,
		FulfillmentPacked,
		FulfillmentShipped,
		FulfillmentOutForDelivery,
		FulfillmentDelivered,
	}

	for i := 0; i < len(steps)-1; i++ {
		next, ok := NextFulfillment(steps[i])
		assert.True(t, ok)
		assert.Equal(t, steps[i+1], next)
	}

	_, ok := NextFulfillment(FulfillmentDelivered)
	assert.False(t, ok, "delivered is terminal")

	_, ok = NextFulfillment("nonsense")
	assert.False(t, ok)
}

func TestValidFulfillment(t *testing.T) {
	assert.True(t, ValidFulfillment(FulfillmentPacked))
	assert.False(t, ValidFulfillment("cancelled"))
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentPending.Terminal())
	assert.True(t, PaymentSucceeded.Terminal())
	assert.True(t, PaymentFailed.Terminal())
}
