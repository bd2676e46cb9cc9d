package services

import (
	"context"
	"crypto/hmac"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/randx"
	"github.com/lulemo/habitlock/internal/secret"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
	"github.com/lulemo/habitlock/internal/server/token"
)

const (
	minPasswordLength = 8
	maxRegionRunes    = 64
	defaultRegion     = "unknown"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// adminPermissions is granted to accounts on the admin allow-list. Everyone
// else can only manage their own records.
var adminPermissions = []string{"dashboard:view", "user:view", "user:edit", "leaderboard:view"}

var userPermissions = []string{"record:self"}

// CredentialAuthService covers the account lifecycle: code-gated
// registration, login, password reset and profile lookup.
type CredentialAuthService struct {
	pool         *sql.DB
	repos        repomanager.RepositoryManager
	tokens       *token.Service
	verification *EmailVerificationService
	adminEmails  map[string]struct{}
	log          logging.Logger
	now          func() time.Time
}

func NewCredentialAuthService(pool *sql.DB, repos repomanager.RepositoryManager, tokens *token.Service, verification *EmailVerificationService, adminEmails []string, log logging.Logger) *CredentialAuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &CredentialAuthService{
		pool:         pool,
		repos:        repos,
		tokens:       tokens,
		verification: verification,
		adminEmails:  admins,
		log:          log.With("service", "auth"),
		now:          time.Now,
	}
}

// SendRegisterCode mails a registration code. An already registered email is
// refused with apperr.ErrAlreadyExists; the caller learns the address is
// taken, which keeps the flow usable at the cost of disclosing existence.
func (s *CredentialAuthService) SendRegisterCode(ctx context.Context, email string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if _, err := s.repos.Users(s.pool).GetByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%w: email already registered", apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return "", err
	}
	return s.verification.SendCode(ctx, email, models.PurposeRegister)
}

// SendResetCode mails a password-reset code. Unknown emails are refused with
// apperr.ErrNotFound so the user learns there is no account to reset.
func (s *CredentialAuthService) SendResetCode(ctx context.Context, email string) (string, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return "", err
	}
	if _, err := s.repos.Users(s.pool).GetByEmail(ctx, email); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("%w: email not registered", apperr.ErrNotFound)
		}
		return "", err
	}
	return s.verification.SendCode(ctx, email, models.PurposeReset)
}

// Register creates an account after consuming a registration code. The role
// and permission bundle come from the admin allow-list.
func (s *CredentialAuthService) Register(ctx context.Context, email, password, region, code string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code is required", apperr.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}

	if _, err := s.repos.Users(s.pool).GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("%w: email already registered", apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if err := s.verification.VerifyCode(ctx, email, strings.TrimSpace(code), models.PurposeRegister); err != nil {
		return err
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return err
	}

	role, permissions := models.RoleUser, userPermissions
	if _, ok := s.adminEmails[email]; ok {
		role, permissions = models.RoleAdmin, adminPermissions
	}

	now := s.now()
	user := &models.User{
		ID:           randx.PrefixedID("usr"),
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
		Region:       normalizeRegion(region),
		Status:       models.StatusActive,
		Permissions:  append([]string(nil), permissions...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.repos.Users(s.pool).Create(ctx, user); err != nil {
		return err
	}
	s.log.Info(ctx, "user registered", "userId", user.ID, "role", role)
	return nil
}

// Login checks the password and mints a token pair. A disabled account is
// rejected before the password check, and an unknown email and a wrong
// password produce the same error.
func (s *CredentialAuthService) Login(ctx context.Context, email, password string) (*token.Credentials, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}

	user, err := s.repos.Users(s.pool).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: wrong email or password", apperr.ErrAuthentication)
		}
		return nil, nil, err
	}
	if user.Status != models.StatusActive {
		return nil, nil, fmt.Errorf("%w: account disabled", apperr.ErrAuthorization)
	}
	if !verifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, nil, fmt.Errorf("%w: wrong email or password", apperr.ErrAuthentication)
	}

	creds, err := s.tokens.Issue(ctx, models.SessionUser{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, nil, err
	}
	return creds, user, nil
}

// ResetPassword consumes a reset code, rehashes the password and revokes
// every live session of the account, so stolen refresh tokens die with the
// old password.
func (s *CredentialAuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code is required", apperr.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}

	user, err := s.repos.Users(s.pool).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("%w: email not registered", apperr.ErrNotFound)
		}
		return err
	}

	if err := s.verification.VerifyCode(ctx, email, strings.TrimSpace(code), models.PurposeReset); err != nil {
		return err
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return err
	}
	now := s.now()

	apply := func(db dbx.DBTX) error {
		if err := s.repos.Users(db).UpdatePassword(ctx, user.ID, hash, salt, now); err != nil {
			return err
		}
		return s.tokens.RevokeAllForUser(ctx, db, user.ID)
	}
	if s.pool != nil {
		err = dbx.WithTx(ctx, s.pool, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return apply(tx)
		})
	} else {
		err = apply(nil)
	}
	if err != nil {
		return err
	}
	s.log.Info(ctx, "password reset, sessions revoked", "userId", user.ID)
	return nil
}

// GetUser returns the account behind an access token subject.
func (s *CredentialAuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repos.Users(s.pool).GetByID(ctx, userID)
}

// NormalizeEmail lowercases, trims and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email", apperr.ErrValidation)
	}
	return email, nil
}

func normalizeRegion(region string) string {
	region = strings.TrimSpace(region)
	if region == "" {
		return defaultRegion
	}
	if runes := []rune(region); len(runes) > maxRegionRunes {
		region = string(runes[:maxRegionRunes])
	}
	return region
}

// hashPassword derives a fresh PBKDF2 hash. Hash and salt are stored as
// separate base64 columns, unlike the client's self-describing record.
func hashPassword(password string) (hash, salt string, err error) {
	saltBytes, err := secret.NewSalt()
	if err != nil {
		return "", "", fmt.Errorf("%w: generating salt: %v", apperr.ErrInternal, err)
	}
	derived := secret.Derive(password, saltBytes, secret.DefaultIterations)
	return base64.StdEncoding.EncodeToString(derived), base64.StdEncoding.EncodeToString(saltBytes), nil
}

func verifyPassword(password, saltB64, hashB64 string) bool {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	stored, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return false
	}
	return hmac.Equal(secret.Derive(password, salt, secret.DefaultIterations), stored)
}
