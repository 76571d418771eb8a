package models

import "time"

// Address is the model for the 'addresses' table.
// CRUD entity scoped to its owning user.
type Address struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	FullName    string    `json:"fullName" db:"full_name"`
	Phone       string    `json:"phone" db:"phone"`
	AddressLine string    `json:"addressLine" db:"address_line"`
	City        string    `json:"city" db:"city"`
	PostalCode  string    `json:"postalCode" db:"postal_code"`
	Country     string    `json:"country" db:"country"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// AddressInput is the shared request body for creating and updating an address.
// Every field is required.
type AddressInput struct {
	FullName    string `json:"fullName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	AddressLine string `json:"addressLine" binding:"required"`
	City        string `json:"city" binding:"required"`
	PostalCode  string `json:"postalCode" binding:"required"`
	Country     string `json:"country" binding:"required"`
}
