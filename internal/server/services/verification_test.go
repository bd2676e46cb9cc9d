package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/logging"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
)

type fakeSender struct {
	sent []struct {
		email, code, purpose string
		ttl                  time.Duration
	}
	err error
}

func (f *fakeSender) SendVerificationCode(email, code, purpose string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, struct {
		email, code, purpose string
		ttl                  time.Duration
	}{email, code, purpose, ttl})
	return nil
}

func newVerificationService(t *testing.T, devBypass bool) (*EmailVerificationService, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	repos := repomanager.NewMemoryManager()
	svc := NewEmailVerificationService(nil, repos, sender, 10*time.Minute, devBypass, logging.Discard())
	return svc, sender
}

func TestSendCodeDevBypass(t *testing.T) {
	svc, sender := newVerificationService(t, true)

	code, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Empty(t, sender.sent, "bypass mode must not send mail")

	require.NoError(t, svc.VerifyCode(context.Background(), "a@example.com", code, models.PurposeRegister))
}

func TestSendCodeDelivers(t *testing.T) {
	svc, sender := newVerificationService(t, false)

	code, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeReset)
	require.NoError(t, err)
	assert.Empty(t, code, "code must not leak outside dev bypass")
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a@example.com", sender.sent[0].email)
	assert.Equal(t, models.PurposeReset, sender.sent[0].purpose)
	assert.Len(t, sender.sent[0].code, 6)
	assert.Equal(t, 10*time.Minute, sender.sent[0].ttl, "mail must carry the configured code lifetime")
}

func TestSendCodeDeliveryFailure(t *testing.T) {
	svc, sender := newVerificationService(t, false)
	sender.err = assert.AnError

	_, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestVerifyCodeSingleUse(t *testing.T) {
	svc, _ := newVerificationService(t, true)

	code, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyCode(context.Background(), "a@example.com", code, models.PurposeRegister))
	err = svc.VerifyCode(context.Background(), "a@example.com", code, models.PurposeRegister)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrConsumed)
}

func TestVerifyCodeWrongCode(t *testing.T) {
	svc, _ := newVerificationService(t, true)

	_, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)

	err = svc.VerifyCode(context.Background(), "a@example.com", "000000", models.PurposeRegister)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrConsumed)
}

func TestVerifyCodePurposeBound(t *testing.T) {
	svc, _ := newVerificationService(t, true)

	code, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)

	err = svc.VerifyCode(context.Background(), "a@example.com", code, models.PurposeReset)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrConsumed)
}

func TestVerifyCodeExpired(t *testing.T) {
	svc, _ := newVerificationService(t, true)

	code, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	err = svc.VerifyCode(context.Background(), "a@example.com", code, models.PurposeRegister)
	assert.ErrorIs(t, err, apperr.ErrExpiredOrConsumed)
}

func TestOutstandingCodesStayValid(t *testing.T) {
	svc, _ := newVerificationService(t, true)

	first, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)
	second, err := svc.SendCode(context.Background(), "a@example.com", models.PurposeRegister)
	require.NoError(t, err)

	// requesting a new code does not invalidate the previous one
	require.NoError(t, svc.VerifyCode(context.Background(), "a@example.com", second, models.PurposeRegister))
	if first != second {
		require.NoError(t, svc.VerifyCode(context.Background(), "a@example.com", first, models.PurposeRegister))
	}
}

func TestHashEmailCodeBindsAllParts(t *testing.T) {
	base := HashEmailCode("a@example.com", "123456", models.PurposeRegister)
	assert.NotEqual(t, base, HashEmailCode("b@example.com", "123456", models.PurposeRegister))
	assert.NotEqual(t, base, HashEmailCode("a@example.com", "654321", models.PurposeRegister))
	assert.NotEqual(t, base, HashEmailCode("a@example.com", "123456", models.PurposeReset))
}
