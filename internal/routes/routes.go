package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/supremedistro/supremedistro-api/internal/handlers"
	"github.com/supremedistro/supremedistro-api/internal/middleware"
)

// CORSMiddleware allows the storefront frontend to call this API with
// credentials. The origin comes from FRONTEND_URL.
func CORSMiddleware() gin.HandlerFunc {
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontend)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	// Uploaded product images are served directly
	router.Static("/uploads", "./uploads")

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)
		v1.GET("/auth/google", h.GoogleLogin)
		v1.GET("/auth/google/callback", h.GoogleCallback)

		// --- Public Catalog Routes ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/categories", h.GetAllCategories)
		v1.GET("/categories/with-brands", h.GetCategoriesWithBrands)

		// --- Payment Webhook ---
		// No caller authentication: the Stripe signature on the raw body is
		// the sole authentication for this endpoint.
		v1.POST("/payment/webhook", h.PaymentWebhook)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			// Checkout
			auth.POST("/payment/create-intent", h.CreatePaymentIntent)
			auth.POST("/orders", h.CreateOrder)
			auth.GET("/orders/user", h.GetMyOrders)

			// Address book
			auth.GET("/addresses", h.ListAddresses)
			auth.POST("/addresses", h.CreateAddress)
			auth.PUT("/addresses/:id", h.UpdateAddress)
			auth.DELETE("/addresses/:id", h.DeleteAddress)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/upload", h.UploadFile)

			admin.POST("/categories", h.CreateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.GET("/orders/admin", h.GetAllOrders)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)

			admin.GET("/admin/dashboard-stats", h.GetDashboardStats)
		}
	}

	return router
}
