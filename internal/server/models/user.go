// Package models defines the persisted entities of the auth service.
package models

import "time"

// Roles assigned at registration. Emails on the configured allow-list
// become admins, everyone else a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account statuses. A disabled account can neither log in nor refresh.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is an account row. PasswordHash and PasswordSalt hold the PBKDF2
// derivation output and its salt, both base64; the raw password is never
// stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	PasswordSalt string
	Role         string
	Region       string
	Status       string
	Permissions  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionUser is the subject carried inside an access token.
type SessionUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
