package emailcodes

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

func (r *PostgresRepository) Create(ctx context.Context, code *models.EmailVerification) error {
	query := `
		INSERT INTO email_verifications (id, email, purpose, code_hash, expires_at, consumed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NULL, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		code.ID, code.Email, code.Purpose, code.CodeHash,
		code.ExpiresAt, code.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindNewestActive(ctx context.Context, email, purpose, codeHash string, now time.Time) (*models.EmailVerification, error) {
	query := `
		SELECT id, email, purpose, code_hash, expires_at, consumed_at, created_at
		FROM email_verifications
		WHERE email = $1 AND purpose = $2 AND code_hash = $3
		  AND consumed_at IS NULL AND expires_at >= $4
		ORDER BY created_at DESC
		LIMIT 1
	`
	code := &models.EmailVerification{}
	var consumed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, email, purpose, codeHash, now).Scan(
		&code.ID, &code.Email, &code.Purpose, &code.CodeHash,
		&code.ExpiresAt, &consumed, &code.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if consumed.Valid {
		code.ConsumedAt = &consumed.Time
	}
	return code, nil
}

func (r *PostgresRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	// the consumed_at IS NULL guard makes first-consumer-wins atomic
	query := `
		UPDATE email_verifications SET consumed_at = $1
		WHERE id = $2 AND consumed_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
