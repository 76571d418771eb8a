package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

//
// --- Address Handlers (scoped to the logged-in user) ---
//

// ListAddresses is the handler for GET /v1/addresses
func (h *Handlers) ListAddresses(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	rows, err := h.DB.Query(
		`SELECT id, user_id, full_name, phone, address_line, city, postal_code, country, created_at, updated_at
		 FROM addresses WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
		return
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.AddressLine,
			&a.City, &a.PostalCode, &a.Country, &a.CreatedAt, &a.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan address"})
			return
		}
		addresses = append(addresses, a)
	}

	c.JSON(http.StatusOK, addresses)
}

// CreateAddress is the handler for POST /v1/addresses
func (h *Handlers) CreateAddress(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	var input models.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	now := time.Now()
	res, err := h.DB.Exec(
		`INSERT INTO addresses (user_id, full_name, phone, address_line, city, postal_code, country, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.FullName, input.Phone, input.AddressLine, input.City, input.PostalCode, input.Country, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save address"})
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, models.Address{
		ID: id, UserID: userID,
		FullName: input.FullName, Phone: input.Phone, AddressLine: input.AddressLine,
		City: input.City, PostalCode: input.PostalCode, Country: input.Country,
		CreatedAt: now, UpdatedAt: now,
	})
}

// UpdateAddress is the handler for PUT /v1/addresses/:id.
// The WHERE clause is scoped to the caller, so another user's address
// comes back as 404 rather than forbidden.
func (h *Handlers) UpdateAddress(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return
	}

	var input models.AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	res, err := h.DB.Exec(
		`UPDATE addresses SET full_name = ?, phone = ?, address_line = ?, city = ?, postal_code = ?, country = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		input.FullName, input.Phone, input.AddressLine, input.City, input.PostalCode, input.Country, time.Now(),
		id, userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address updated"})
}

// DeleteAddress is the handler for DELETE /v1/addresses/:id
func (h *Handlers) DeleteAddress(c *gin.Context) {
	userIDRaw, _ := c.Get("userID")
	userID := userIDRaw.(int64)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address ID"})
		return
	}

	res, err := h.DB.Exec("DELETE FROM addresses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete address"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
