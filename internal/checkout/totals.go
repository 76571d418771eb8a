// Package checkout holds the money math and order status rules shared by the
// payment, order and webhook handlers. All amounts are integer pence; nothing
// in this package ever sees a decimal pound value.
package checkout

import (
	"errors"
	"time"
)

const (
	// TaxRateBasisPoints is the flat 20% VAT applied to the subtotal.
	TaxRateBasisPoints = 2000

	// DealSavingsBasisPoints is the extra 10% taken off deal-of-the-day lines.
	DealSavingsBasisPoints = 1000
)

var (
	ErrEmptyCart         = errors.New("cart has no line items")
	ErrInvalidQuantity   = errors.New("line quantity must be positive")
	ErrInvalidUnitPrice  = errors.New("unit price must be positive")
	ErrNonPositiveAmount = errors.New("computed total must be positive")
)

// Line is one priced cart entry as the server sees it. The unit price is
// already resolved (discounted price when present, list price otherwise).
type Line struct {
	ProductID      int64
	Quantity       int
	UnitPricePence int64
	ActiveDeal     bool // Deal-of-the-day and not expired at pricing time
}

// Totals is the checkout money breakdown, all in pence.
type Totals struct {
	SubtotalPence int64 `json:"subtotalPence"`
	TaxPence      int64 `json:"taxPence"`
	SavingsPence  int64 `json:"savingsPence"`
	TotalPence    int64 `json:"totalPence"`
}

// ComputeTotals prices a set of cart lines:
//
//	subtotal = sum(quantity * unit price)
//	tax      = subtotal * 20%
//	savings  = 10% of each active-deal line
//	total    = subtotal + tax - savings
//
// Integer division truncates the tax and savings toward zero, so the pence
// never round up against the customer.
func ComputeTotals(lines []Line) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, ErrEmptyCart
	}

	var t Totals
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Totals{}, ErrInvalidQuantity
		}
		if line.UnitPricePence <= 0 {
			return Totals{}, ErrInvalidUnitPrice
		}

		lineTotal := int64(line.Quantity) * line.UnitPricePence
		t.SubtotalPence += lineTotal

		if line.ActiveDeal {
			t.SavingsPence += lineTotal * DealSavingsBasisPoints / 10000
		}
	}

	t.TaxPence = t.SubtotalPence * TaxRateBasisPoints / 10000
	t.TotalPence = t.SubtotalPence + t.TaxPence - t.SavingsPence

	if t.TotalPence <= 0 {
		return Totals{}, ErrNonPositiveAmount
	}
	return t, nil
}

// UnitPricePence resolves the price a customer actually pays for one unit:
// the discounted price if one is set, the list price otherwise.
func UnitPricePence(dailyPricePence int64, offSalePricePence *int64) int64 {
	if offSalePricePence != nil && *offSalePricePence > 0 {
		return *offSalePricePence
	}
	return dailyPricePence
}

// DealActive reports whether a deal-of-the-day flag still applies at 'now'.
// A nil expiry means the deal never expires.
func DealActive(isDealOfDay bool, expiry *time.Time, now time.Time) bool {
	if !isDealOfDay {
		return false
	}
	return expiry == nil || expiry.After(now)
}
