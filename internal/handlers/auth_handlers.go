package handlers

import (
	"database/sql"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supremedistro/supremedistro-api/internal/auth"
	"github.com/supremedistro/supremedistro-api/internal/models"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// authResponse is the shared success payload for register/login.
func authResponse(user models.User) (gin.H, error) {
	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	}, nil
}

// Register is the handler for POST /v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject duplicate emails before hashing
	var exists int
	err := h.DB.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", input.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing users"})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	now := time.Now()
	res, err := h.DB.Exec(
		`INSERT INTO users (name, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, 'user', ?, ?)`,
		input.Name, input.Email, password.Hash, now, now,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	userID, _ := res.LastInsertId()

	resp, err := authResponse(models.User{ID: userID, Name: input.Name, Email: input.Email, Role: "user"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login is the handler for POST /v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, name, email, password_hash, role FROM users WHERE email = ?",
		input.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	resp, err := authResponse(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleLogin is the handler for GET /v1/auth/google.
// It redirects the browser to Google's consent screen.
func (h *Handlers) GoogleLogin(c *gin.Context) {
	cfg := auth.GoogleOAuthConfig()
	if cfg.ClientID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, cfg.AuthCodeURL("state"))
}

// GoogleCallback is the handler for GET /v1/auth/google/callback.
// It upserts the user by email and redirects back to the frontend with a JWT.
func (h *Handlers) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	profile, err := auth.FetchGoogleProfile(c, auth.GoogleOAuthConfig(), code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
		return
	}

	now := time.Now()
	var user models.User
	err = h.DB.QueryRow(
		"SELECT id, name, email, role FROM users WHERE email = ?",
		profile.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role)

	switch {
	case err == sql.ErrNoRows:
		res, insertErr := h.DB.Exec(
			`INSERT INTO users (name, email, password_hash, role, google_id, created_at, updated_at)
			 VALUES (?, ?, '', 'user', ?, ?, ?)`,
			profile.Name, profile.Email, profile.ID, now, now,
		)
		if insertErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
		user.ID, _ = res.LastInsertId()
		user.Name, user.Email, user.Role = profile.Name, profile.Email, "user"
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	default:
		// Existing account: link the Google ID if it isn't stored yet.
		_, _ = h.DB.Exec("UPDATE users SET google_id = ?, updated_at = ? WHERE id = ? AND google_id IS NULL",
			profile.ID, now, user.ID)
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	c.Redirect(http.StatusTemporaryRedirect, frontend+"/oauth-success?token="+url.QueryEscape(token))
}
