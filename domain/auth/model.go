package auth

import "time"

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// SessionUser is the user data returned on login
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginResponse is the login success envelope
type LoginResponse struct {
	Message string      `json:"message"`
	User    SessionUser `json:"user"`
}

// Lockout policy for repeated failed logins
const (
	MaxFailedAttempts = 5
	BlockDuration     = 15 * time.Minute
)
