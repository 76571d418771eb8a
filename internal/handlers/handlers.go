package handlers

import (
	"database/sql"

	"github.com/supremedistro/supremedistro-api/internal/payments"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB      *sql.DB          // Primary connection pool
	Gateway payments.Gateway // Payment processor adapter (Stripe in production)
}
