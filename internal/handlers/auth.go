package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"platinummotors/internal/database"
	"platinummotors/internal/models"
	"platinummotors/internal/validation"
)

type AuthHandler struct {
	db *database.Database
}

func NewAuthHandler(db *database.Database) *AuthHandler {
	return &AuthHandler{db: db}
}

type AuthResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	User         *models.User `json:"user,omitempty"`
	SessionToken string       `json:"sessionToken,omitempty"`
}

// Login authenticates an admin user
// @Summary Admin login
// @Description Authenticates with username and password and returns a session token. The token is also set as an HTTP-only cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} AuthResponse "Invalid username or password"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AuthResponse{
			Success: false,
			Message: "Invalid request data",
		})
		return
	}

	// Same response as a wrong password so usernames cannot be probed
	if err := validation.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}

	sessionToken := generateSessionToken()
	user.SessionToken = sessionToken
	user.LastActive = time.Now()

	if err := h.db.UpdateUserSession(user.ID, sessionToken); err != nil {
		c.JSON(http.StatusInternalServerError, AuthResponse{
			Success: false,
			Message: "Failed to create session",
		})
		return
	}

	// Set session cookie
	c.SetCookie("session_token", sessionToken, 86400*30, "/", "", false, true) // 30 days

	c.JSON(http.StatusOK, AuthResponse{
		Success:      true,
		Message:      "Login successful",
		User:         user,
		SessionToken: sessionToken,
	})
}

// Logout removes the user session
// @Summary Admin logout
// @Description Invalidates the current session token and clears the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, exists := c.Get("user")
	if exists {
		if u, ok := user.(*models.User); ok {
			h.db.UpdateUserSession(u.ID, "")
		}
	}

	// Clear session cookie
	c.SetCookie("session_token", "", -1, "/", "", false, true)

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Message: "Logout successful",
	})
}

// GetProfile returns the current user's profile
// @Summary Current admin profile
// @Tags auth
// @Produce json
// @Success 200 {object} AuthResponse
// @Failure 401 {object} AuthResponse "Not authenticated"
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, AuthResponse{
			Success: false,
			Message: "Not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		User:    user.(*models.User),
	})
}

// AuthMiddleware validates session tokens and sets user context
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try to get session token from cookie first, then header
		sessionToken, err := c.Cookie("session_token")
		if err != nil || sessionToken == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				sessionToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if sessionToken == "" {
			c.Next() // Continue without user context
			return
		}

		// Malformed tokens never reach the database
		if err := validation.ValidateSessionToken(sessionToken); err != nil {
			c.Next()
			return
		}

		user, err := h.db.GetUserBySessionToken(sessionToken)
		if err != nil {
			c.Next() // Continue without user context
			return
		}

		user.LastActive = time.Now()
		h.db.UpdateUserLastActive(user.ID)

		c.Set("user", user)
		c.Next()
	}
}

// RequireAuth middleware that requires authentication
func (h *AuthHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// generateSessionToken creates a cryptographically secure session token
func generateSessionToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
