// Package users provides repositories for account rows.
package users

import (
	"context"
	"time"

	"github.com/lulemo/habitlock/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash, salt string, at time.Time) error
}
