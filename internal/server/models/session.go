package models

import "time"

// Session tracks one refresh token: one row per login, multiple concurrent
// rows per user. Only the SHA-256 of the refresh token is stored. The row
// is never updated except to set RevokedAt; a refresh does not rotate it.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	RevokedAt        *time.Time
}

// Active reports whether the session can still mint access tokens at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
