package models

import (
	"time"
)

// Product is the model for the 'products' table.
// Nullable columns use pointers for clean JSON serialization.
// All prices are integer pence; decimal formatting is a client concern.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`

	// --- Brand Info ---
	Brand            string  `json:"brand" db:"brand"`
	BrandLogo        *string `json:"brandLogo,omitempty" db:"brand_logo"`
	BrandDescription *string `json:"brandDescription,omitempty" db:"brand_description"`

	// --- Pricing & Stock ---
	DailyPricePence   int64  `json:"dailyPricePence" db:"daily_price_pence"`
	OffSalePricePence *int64 `json:"offSalePricePence,omitempty" db:"off_sale_price_pence"`
	Stock             int    `json:"stock" db:"stock"`

	// --- Merchandising Flags ---
	IsFeatured  bool       `json:"isFeatured" db:"is_featured"`
	IsDealOfDay bool       `json:"isDealOfDay" db:"is_deal_of_day"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty" db:"expiry_date"` // Deal expiry, NULL = never expires

	// --- Media ---
	Image  *string  `json:"image,omitempty" db:"image"` // Main image URL
	Images []string `json:"images" db:"-"`              // Gallery, stored in 'product_images'

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
