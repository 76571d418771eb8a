package models

import "time"

// Category defines the struct for the 'categories' table
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CategoryBrands groups the distinct brands sold under one product category.
// Built from the products table, not stored.
type CategoryBrands struct {
	Category string   `json:"category"`
	Brands   []string `json:"brands"`
}

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required"`
}
