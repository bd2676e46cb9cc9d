// Package services implements the application logic of the auth server on
// top of the repositories, the token service and the mail sender.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/dbx"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/randx"
	"github.com/lulemo/habitlock/internal/server/mail"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
)

const codeDigits = 6

// EmailVerificationService issues and checks single-use email codes. Several
// outstanding codes may coexist per (email, purpose); each is valid until
// its own expiry and the newest matching one wins on verification.
type EmailVerificationService struct {
	db        dbx.DBTX
	repos     repomanager.RepositoryManager
	sender    mail.Sender
	ttl       time.Duration
	devBypass bool
	log       logging.Logger
	now       func() time.Time
}

func NewEmailVerificationService(db dbx.DBTX, repos repomanager.RepositoryManager, sender mail.Sender, ttl time.Duration, devBypass bool, log logging.Logger) *EmailVerificationService {
	return &EmailVerificationService{
		db:        db,
		repos:     repos,
		sender:    sender,
		ttl:       ttl,
		devBypass: devBypass,
		log:       log.With("service", "verification"),
		now:       time.Now,
	}
}

// SendCode creates a fresh code for (email, purpose) and delivers it. In dev
// bypass mode delivery is skipped and the code is returned to the caller so
// the API can surface it as devCode; otherwise the returned string is empty.
func (s *EmailVerificationService) SendCode(ctx context.Context, email, purpose string) (string, error) {
	code, err := randx.NumericCode(codeDigits)
	if err != nil {
		return "", fmt.Errorf("%w: generating code: %v", apperr.ErrInternal, err)
	}
	now := s.now()

	record := &models.EmailVerification{
		ID:        randx.PrefixedID("evc"),
		Email:     email,
		Purpose:   purpose,
		CodeHash:  HashEmailCode(email, code, purpose),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repos.EmailCodes(s.db).Create(ctx, record); err != nil {
		return "", err
	}

	if s.devBypass {
		s.log.Info(ctx, "email delivery bypassed", "email", email, "purpose", purpose)
		return code, nil
	}
	if err := s.sender.SendVerificationCode(email, code, purpose, s.ttl); err != nil {
		s.log.Error(ctx, "sending verification code", "email", email, "purpose", purpose, "error", err)
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	return "", nil
}

// VerifyCode consumes the newest live code matching (email, purpose, code).
// Wrong, expired and already used codes are indistinguishable to the caller;
// all return apperr.ErrExpiredOrConsumed.
func (s *EmailVerificationService) VerifyCode(ctx context.Context, email, code, purpose string) error {
	now := s.now()

	record, err := s.repos.EmailCodes(s.db).FindNewestActive(ctx, email, purpose, HashEmailCode(email, code, purpose), now)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("%w: no matching code", apperr.ErrExpiredOrConsumed)
		}
		return err
	}

	ok, err := s.repos.EmailCodes(s.db).Consume(ctx, record.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: code already used", apperr.ErrExpiredOrConsumed)
	}
	return nil
}

// HashEmailCode returns the hex SHA-256 under which a code is stored. The
// purpose and email are bound into the hash, so a register code can never
// pass as a reset code.
func HashEmailCode(email, code, purpose string) string {
	sum := sha256.Sum256([]byte(purpose + ":" + email + ":" + code))
	return hex.EncodeToString(sum[:])
}
