package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

type DashboardStats struct {
	TotalProducts       int            `json:"totalProducts"`
	TotalOrdersThisWeek int            `json:"totalOrdersThisWeek"`
	RecentOrders        []models.Order `json:"recentOrders"`
}

// GetDashboardStats returns KPI data for the admin dashboard
// GET /v1/admin/dashboard-stats
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	stats := DashboardStats{RecentOrders: []models.Order{}}

	// 1. Total product count
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&stats.TotalProducts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	// 2. Orders placed in the last 7 days
	startOfWeek := time.Now().AddDate(0, 0, -7)
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM orders WHERE created_at >= ?", startOfWeek).
		Scan(&stats.TotalOrdersThisWeek); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. Five most recent orders with customer info
	rows, err := h.DB.Query(
		`SELECT o.id, o.reference, o.user_id, o.status, o.payment_status, o.total_pence, o.created_at,
			u.name, u.email
		 FROM orders o
		 JOIN users u ON o.user_id = u.id
		 ORDER BY o.created_at DESC
		 LIMIT 5`,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.UserID, &o.Status, &o.PaymentStatus,
			&o.TotalPence, &o.CreatedAt, &o.CustomerName, &o.CustomerEmail); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan recent order"})
			return
		}
		stats.RecentOrders = append(stats.RecentOrders, o)
	}

	c.JSON(http.StatusOK, stats)
}
