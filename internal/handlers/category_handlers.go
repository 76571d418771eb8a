package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

// GetAllCategories is the handler for GET /v1/categories (public)
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query("SELECT id, name, slug, created_at FROM categories ORDER BY name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategoriesWithBrands is the handler for GET /v1/categories/with-brands.
// It groups the distinct brands sold under each product category, for the
// shop navigation menu.
func (h *Handlers) GetCategoriesWithBrands(c *gin.Context) {
	rows, err := h.DB.Query(
		`SELECT category, brand FROM products
		 WHERE brand <> ''
		 GROUP BY category, brand
		 ORDER BY category, brand`,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories with brands"})
		return
	}
	defer rows.Close()

	grouped := []models.CategoryBrands{}
	for rows.Next() {
		var category, brand string
		if err := rows.Scan(&category, &brand); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category brand"})
			return
		}
		// Rows arrive sorted by category, so append runs group naturally.
		if n := len(grouped); n > 0 && grouped[n-1].Category == category {
			grouped[n-1].Brands = append(grouped[n-1].Brands, brand)
		} else {
			grouped = append(grouped, models.CategoryBrands{Category: category, Brands: []string{brand}})
		}
	}

	c.JSON(http.StatusOK, grouped)
}

// CreateCategory is the handler for POST /v1/categories (admin only)
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input models.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	var exists int
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM categories WHERE name = ?", input.Name).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check categories"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
		return
	}

	res, err := h.DB.Exec(
		"INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)",
		input.Name, slug.Make(input.Name), time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	id, _ := res.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created",
		"category": models.Category{ID: id, Name: input.Name, Slug: slug.Make(input.Name)},
	})
}

// DeleteCategory is the handler for DELETE /v1/categories/:id (admin only)
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	res, err := h.DB.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
