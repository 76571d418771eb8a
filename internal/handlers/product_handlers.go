package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

const productColumns = `id, name, slug, description, category, brand, brand_logo, brand_description,
	daily_price_pence, off_sale_price_pence, stock, is_featured, is_deal_of_day, expiry_date, image,
	created_at, updated_at`

// scanProduct maps one product row into the model.
func scanProduct(row interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Brand, &p.BrandLogo, &p.BrandDescription,
		&p.DailyPricePence, &p.OffSalePricePence, &p.Stock, &p.IsFeatured, &p.IsDealOfDay, &p.ExpiryDate,
		&p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetProducts is the handler for GET /v1/products
// Supports ?featured=true and ?dealOfDay=true filters; dealOfDay excludes
// deals whose expiry date has passed.
func (h *Handlers) GetProducts(c *gin.Context) {
	query := "SELECT " + productColumns + " FROM products"
	var clauses []string
	var args []interface{}

	if c.Query("featured") == "true" {
		clauses = append(clauses, "is_featured = 1")
	}
	if c.Query("dealOfDay") == "true" {
		clauses = append(clauses, "is_deal_of_day = 1 AND (expiry_date IS NULL OR expiry_date > ?)")
		args = append(args, time.Now())
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct is the handler for GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	row := h.DB.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	// Gallery images
	imgRows, err := h.DB.Query("SELECT url FROM product_images WHERE product_id = ? ORDER BY position", id)
	if err == nil {
		defer imgRows.Close()
		for imgRows.Next() {
			var url string
			if imgRows.Scan(&url) == nil {
				p.Images = append(p.Images, url)
			}
		}
	}

	c.JSON(http.StatusOK, p)
}

// productForm reads the shared multipart fields for create/update.
// Prices arrive as integer pence strings.
type productForm struct {
	Name              string
	Description       string
	Category          string
	Brand             string
	BrandLogo         *string
	BrandDescription  *string
	DailyPricePence   int64
	OffSalePricePence *int64
	Stock             int
	IsFeatured        bool
	IsDealOfDay       bool
	ExpiryDate        *time.Time
	GalleryURLs       []string
}

func parseProductForm(c *gin.Context) (*productForm, error) {
	f := &productForm{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Brand:       c.PostForm("brand"),
	}
	if f.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if f.Category == "" {
		return nil, fmt.Errorf("category is required")
	}

	daily, err := strconv.ParseInt(c.PostForm("dailyPricePence"), 10, 64)
	if err != nil || daily <= 0 {
		return nil, fmt.Errorf("dailyPricePence must be a positive integer")
	}
	f.DailyPricePence = daily

	if v := c.PostForm("offSalePricePence"); v != "" {
		offSale, err := strconv.ParseInt(v, 10, 64)
		if err != nil || offSale <= 0 {
			return nil, fmt.Errorf("offSalePricePence must be a positive integer")
		}
		f.OffSalePricePence = &offSale
	}

	if v := c.PostForm("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("stock must be a non-negative integer")
		}
		f.Stock = stock
	}

	f.IsFeatured = c.PostForm("isFeatured") == "true"
	f.IsDealOfDay = c.PostForm("isDealOfDay") == "true"

	if v := c.PostForm("expiryDate"); v != "" {
		expiry, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("expiryDate must be RFC3339")
		}
		f.ExpiryDate = &expiry
	}

	if v := c.PostForm("brandLogo"); v != "" {
		f.BrandLogo = &v
	}
	if v := c.PostForm("brandDescription"); v != "" {
		f.BrandDescription = &v
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		f.GalleryURLs = form.Value["images"]
	}

	return f, nil
}

// saveProductImage stores an uploaded file under uploads/ with a uuid
// filename and returns its public URL. Returns nil when no file was sent.
func saveProductImage(c *gin.Context) (*string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil // No file attached
	}

	uploadPath := "./uploads"
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		os.Mkdir(uploadPath, 0755)
	}

	ext := filepath.Ext(file.Filename)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(uploadPath, newFilename)); err != nil {
		return nil, err
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	publicURL := fmt.Sprintf("%s/uploads/%s", baseURL, newFilename)
	return &publicURL, nil
}

// CreateProduct is the handler for POST /v1/products (admin only, multipart)
func (h *Handlers) CreateProduct(c *gin.Context) {
	form, err := parseProductForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	image, err := saveProductImage(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	now := time.Now()
	res, err := h.DB.Exec(
		`INSERT INTO products (name, slug, description, category, brand, brand_logo, brand_description,
			daily_price_pence, off_sale_price_pence, stock, is_featured, is_deal_of_day, expiry_date, image,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		form.Name, slug.Make(form.Name), form.Description, form.Category, form.Brand,
		form.BrandLogo, form.BrandDescription, form.DailyPricePence, form.OffSalePricePence,
		form.Stock, form.IsFeatured, form.IsDealOfDay, form.ExpiryDate, image, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	productID, _ := res.LastInsertId()

	for i, url := range form.GalleryURLs {
		if _, err := h.DB.Exec(
			"INSERT INTO product_images (product_id, url, position) VALUES (?, ?, ?)",
			productID, url, i,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save gallery image"})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": productID})
}

// UpdateProduct is the handler for PUT /v1/products/:id (admin only, multipart)
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	form, err := parseProductForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingImage *string
	err = h.DB.QueryRow("SELECT image FROM products WHERE id = ?", id).Scan(&existingImage)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	image, err := saveProductImage(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}
	if image == nil {
		image = existingImage // Keep the current image when no new file is sent
	}

	_, err = h.DB.Exec(
		`UPDATE products SET name = ?, slug = ?, description = ?, category = ?, brand = ?,
			brand_logo = ?, brand_description = ?, daily_price_pence = ?, off_sale_price_pence = ?,
			stock = ?, is_featured = ?, is_deal_of_day = ?, expiry_date = ?, image = ?, updated_at = ?
		 WHERE id = ?`,
		form.Name, slug.Make(form.Name), form.Description, form.Category, form.Brand,
		form.BrandLogo, form.BrandDescription, form.DailyPricePence, form.OffSalePricePence,
		form.Stock, form.IsFeatured, form.IsDealOfDay, form.ExpiryDate, image, time.Now(), id,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /v1/products/:id (admin only)
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	res, err := h.DB.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
