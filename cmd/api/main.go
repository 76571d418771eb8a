package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/supremedistro/supremedistro-api/internal/database"
	"github.com/supremedistro/supremedistro-api/internal/handlers"
	"github.com/supremedistro/supremedistro-api/internal/payments"
	"github.com/supremedistro/supremedistro-api/internal/routes"
)

func main() {
	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if os.Getenv("RUN_MIGRATIONS") != "false" {
		if err := database.RunMigrations(db, log.Default()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// --- Payment Gateway ---
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Fatal("CRITICAL ERROR: STRIPE_SECRET_KEY environment variable is not set.")
	}
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("CRITICAL ERROR: STRIPE_WEBHOOK_SECRET environment variable is not set.")
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:      db,
		Gateway: payments.NewStripeGateway(stripeKey, webhookSecret),
	}

	// --- Background Worker ---
	// Hourly sweep flagging orders stuck in pending payment for manual
	// reconciliation against the gateway dashboard.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: monitoring for overdue payments...")

		for range ticker.C {
			app.ProcessOverduePayments()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting SupremeDistro API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
