// Package token issues and validates the two kinds of session tokens:
// stateless HMAC-signed access tokens and database-backed refresh tokens.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/randx"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
)

const refreshTokenBytes = 16

// Credentials is one issued token pair.
type Credentials struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service mints token pairs on login, validates access tokens without
// touching the database, and exchanges refresh tokens for fresh access
// tokens. A refresh never rotates the refresh token; the session row lives
// until it expires or is revoked.
type Service struct {
	db         dbx.DBTX
	repos      repomanager.RepositoryManager
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(db dbx.DBTX, repos repomanager.RepositoryManager, secret []byte, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		db:         db,
		repos:      repos,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue creates a new session for the user and returns both tokens.
func (s *Service) Issue(ctx context.Context, user models.SessionUser) (*Credentials, error) {
	now := s.now()

	accessExp := now.Add(s.accessTTL)
	access, err := encodeAccessToken(s.secret, user, accessExp)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding access token: %v", apperr.ErrInternal, err)
	}

	refresh, err := randx.HexString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: generating refresh token: %v", apperr.ErrInternal, err)
	}
	refreshExp := now.Add(s.refreshTTL)

	session := &models.Session{
		ID:               randx.PrefixedID("ses"),
		UserID:           user.UserID,
		RefreshTokenHash: HashRefreshToken(refresh),
		ExpiresAt:        refreshExp,
		CreatedAt:        now,
	}
	if err := s.repos.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, err
	}

	return &Credentials{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ValidateAccess checks the token signature and expiry. It never touches the
// database, so revoking a session does not invalidate access tokens already
// in flight; they simply age out.
func (s *Service) ValidateAccess(token string) (*models.SessionUser, error) {
	return parseAccessToken(s.secret, token, s.now())
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself stays valid. Returns apperr.ErrAuthentication for unknown,
// revoked or expired tokens and apperr.ErrAuthorization when the account is
// disabled.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Credentials, *models.User, error) {
	now := s.now()

	session, err := s.repos.Sessions(s.db).FindByTokenHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unknown refresh token", apperr.ErrAuthentication)
	}
	if !session.Active(now) {
		return nil, nil, fmt.Errorf("%w: session expired or revoked", apperr.ErrAuthentication)
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unknown refresh token", apperr.ErrAuthentication)
	}
	if user.Status != models.StatusActive {
		return nil, nil, fmt.Errorf("%w: account disabled", apperr.ErrAuthorization)
	}

	accessExp := now.Add(s.accessTTL)
	access, err := encodeAccessToken(s.secret, models.SessionUser{UserID: user.ID, Email: user.Email}, accessExp)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: encoding access token: %v", apperr.ErrInternal, err)
	}

	return &Credentials{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: session.ExpiresAt,
	}, user, nil
}

// RevokeByToken ends the session holding this refresh token. Unknown and
// already revoked tokens are not errors, so logout is idempotent.
func (s *Service) RevokeByToken(ctx context.Context, refreshToken string) error {
	return s.repos.Sessions(s.db).RevokeByTokenHash(ctx, HashRefreshToken(refreshToken), s.now())
}

// RevokeAllForUser ends every live session of the user, for example after a
// password reset.
func (s *Service) RevokeAllForUser(ctx context.Context, db dbx.DBTX, userID string) error {
	return s.repos.Sessions(db).RevokeAllForUser(ctx, userID, s.now())
}

// HashRefreshToken returns the hex SHA-256 under which a refresh token is
// stored. The raw token never reaches the database.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
