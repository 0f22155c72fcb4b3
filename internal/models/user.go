package models

import "time"

// User represents an admin account able to trigger syncs and edit inventory
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never include in JSON responses
	DisplayName  string    `json:"displayName"`
	SessionToken string    `json:"sessionToken,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActive   time.Time `json:"lastActive"`
}

// LoginRequest is the credential payload for /api/auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
