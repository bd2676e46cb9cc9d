// Package emailcodes provides repositories for email verification codes.
package emailcodes

import (
	"context"
	"time"

	"github.com/lulemo/habitlock/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, code *models.EmailVerification) error

	// FindNewestActive returns the most recently created row matching
	// (email, purpose, codeHash) that is unconsumed and unexpired at now,
	// or apperr.ErrNotFound.
	FindNewestActive(ctx context.Context, email, purpose, codeHash string, now time.Time) (*models.EmailVerification, error)

	// Consume marks the row consumed, returning false when it was already
	// consumed by a concurrent request. The check-and-set is atomic.
	Consume(ctx context.Context, id string, at time.Time) (bool, error)
}
