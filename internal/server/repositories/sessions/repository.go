// Package sessions provides repositories for refresh-token sessions.
package sessions

import (
	"context"
	"time"

	"github.com/lulemo/habitlock/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error

	// FindByTokenHash returns the session whose refresh token hashes to
	// tokenHash, or apperr.ErrNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)

	// RevokeByTokenHash sets revoked_at on the matching unrevoked session.
	// Revoking an unknown or already revoked token is not an error.
	RevokeByTokenHash(ctx context.Context, tokenHash string, at time.Time) error

	// RevokeAllForUser sets revoked_at on every unrevoked session of the user.
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) error
}
