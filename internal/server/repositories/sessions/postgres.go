package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, created_at, revoked_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
	`
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.UserID, session.RefreshTokenHash,
		session.ExpiresAt, session.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, expires_at, created_at, revoked_at
		FROM sessions
		WHERE refresh_token_hash = $1
	`
	session := &models.Session{}
	var revoked sql.NullTime
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.RefreshTokenHash,
		&session.ExpiresAt, &session.CreatedAt, &revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if revoked.Valid {
		session.RevokedAt = &revoked.Time
	}
	return session, nil
}

func (r *PostgresRepository) RevokeByTokenHash(ctx context.Context, tokenHash string, at time.Time) error {
	query := `
		UPDATE sessions SET revoked_at = $1
		WHERE refresh_token_hash = $2 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, at, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	query := `
		UPDATE sessions SET revoked_at = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, at, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
