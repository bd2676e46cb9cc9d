package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/server/models"
	"github.com/lulemo/habitlock/internal/server/repositories/repomanager"
)

var testSecret = []byte("test-signing-secret")

func newTestService(t *testing.T) (*Service, *repomanager.MemoryManager) {
	t.Helper()
	repos := repomanager.NewMemoryManager()
	svc := NewService(nil, repos, testSecret, 30*time.Minute, 336*time.Hour)
	return svc, repos
}

func seedUser(t *testing.T, repos *repomanager.MemoryManager) *models.User {
	t.Helper()
	user := &models.User{
		ID:     "usr_11111111-2222-3333-4444-555555555555",
		Email:  "new@example.com",
		Role:   models.RoleUser,
		Status: models.StatusActive,
	}
	_, err := repos.Users(nil).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestIssueAndValidateAccess(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	assert.Len(t, creds.RefreshToken, 32)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), creds.AccessExpiresAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(336*time.Hour), creds.RefreshExpiresAt, 5*time.Second)

	subject, err := svc.ValidateAccess(creds.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject.UserID)
	assert.Equal(t, user.Email, subject.Email)
}

func TestAccessTokenWireFormat(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	segments := strings.Split(creds.AccessToken, ".")
	require.Len(t, segments, 2)

	payload, err := base64.RawURLEncoding.DecodeString(segments[0])
	require.NoError(t, err)

	var claims struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Exp    int64  `json:"exp"`
	}
	require.NoError(t, json.Unmarshal(payload, &claims))
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, creds.AccessExpiresAt.UnixMilli(), claims.Exp)
}

func TestValidateAccessRejectsTampering(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	segments := strings.Split(creds.AccessToken, ".")
	require.Len(t, segments, 2)

	forged, err := json.Marshal(map[string]any{
		"userId": user.ID,
		"email":  "attacker@example.com",
		"exp":    time.Now().Add(time.Hour).UnixMilli(),
	})
	require.NoError(t, err)
	tampered := base64.RawURLEncoding.EncodeToString(forged) + "." + segments[1]

	_, err = svc.ValidateAccess(tampered)
	assert.ErrorIs(t, err, apperr.ErrIntegrity)
}

func TestValidateAccessMalformed(t *testing.T) {
	svc, _ := newTestService(t)

	for _, token := range []string{"", "nodots", "two..empty", "a.b", "!!!.sig"} {
		_, err := svc.ValidateAccess(token)
		assert.ErrorIs(t, err, apperr.ErrIntegrity, "token %q", token)
	}
}

func TestValidateAccessExpired(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = svc.ValidateAccess(creds.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	assert.NotErrorIs(t, err, apperr.ErrIntegrity)
}

func TestRefreshKeepsRefreshToken(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	refreshed, got, err := svc.Refresh(context.Background(), creds.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, creds.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, creds.RefreshExpiresAt.Unix(), refreshed.RefreshExpiresAt.Unix())
	assert.Equal(t, user.ID, got.ID)

	subject, err := svc.ValidateAccess(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject.UserID)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Refresh(context.Background(), "deadbeefdeadbeefdeadbeefdeadbeef")
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestRefreshExpiredSession(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(337 * time.Hour) }
	_, _, err = svc.Refresh(context.Background(), creds.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}

func TestRefreshDisabledUser(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	repos.UserStore().SetStatus(user.ID, models.StatusDisabled)
	_, _, err = svc.Refresh(context.Background(), creds.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestRevokeByToken(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)

	creds, err := svc.Issue(context.Background(), models.SessionUser{UserID: user.ID, Email: user.Email})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeByToken(context.Background(), creds.RefreshToken))
	_, _, err = svc.Refresh(context.Background(), creds.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	// revoking again, or revoking garbage, stays quiet
	assert.NoError(t, svc.RevokeByToken(context.Background(), creds.RefreshToken))
	assert.NoError(t, svc.RevokeByToken(context.Background(), "no-such-token"))
}

func TestRevokeAllForUser(t *testing.T) {
	svc, repos := newTestService(t)
	user := seedUser(t, repos)
	subject := models.SessionUser{UserID: user.ID, Email: user.Email}

	first, err := svc.Issue(context.Background(), subject)
	require.NoError(t, err)
	second, err := svc.Issue(context.Background(), subject)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	require.NoError(t, svc.RevokeAllForUser(context.Background(), nil, user.ID))

	_, _, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
	_, _, err = svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)
}
