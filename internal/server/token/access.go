package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lulemo/habitlock/internal/apperr"
	"github.com/lulemo/habitlock/internal/server/models"
)

// accessClaims is the access token payload. Exp is Unix milliseconds.
type accessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Exp    int64  `json:"exp"`
}

// encodeAccessToken builds the two-segment wire format:
//
//	base64url(JSON payload) + "." + base64url(HMAC-SHA256(secret, payload segment))
//
// The signature covers the encoded payload segment, not the raw JSON.
func encodeAccessToken(secret []byte, user models.SessionUser, expiresAt time.Time) (string, error) {
	payload, err := json.Marshal(accessClaims{
		UserID: user.UserID,
		Email:  user.Email,
		Exp:    expiresAt.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	segment := base64.RawURLEncoding.EncodeToString(payload)
	return segment + "." + signSegment(secret, segment), nil
}

// parseAccessToken validates the signature and expiry and returns the
// subject. Errors: apperr.ErrIntegrity for anything malformed or with a bad
// signature, apperr.ErrAuthentication for a well-signed but expired token.
func parseAccessToken(secret []byte, token string, now time.Time) (*models.SessionUser, error) {
	segment, signature, ok := strings.Cut(token, ".")
	if !ok || segment == "" || signature == "" {
		return nil, fmt.Errorf("%w: malformed token", apperr.ErrIntegrity)
	}

	want := signSegment(secret, segment)
	if !hmac.Equal([]byte(signature), []byte(want)) {
		return nil, fmt.Errorf("%w: signature mismatch", apperr.ErrIntegrity)
	}

	payload, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: bad payload encoding", apperr.ErrIntegrity)
	}
	var claims accessClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: bad payload", apperr.ErrIntegrity)
	}
	if claims.UserID == "" || claims.Email == "" || claims.Exp == 0 {
		return nil, fmt.Errorf("%w: incomplete payload", apperr.ErrIntegrity)
	}
	if !now.Before(time.UnixMilli(claims.Exp)) {
		return nil, fmt.Errorf("%w: token expired", apperr.ErrAuthentication)
	}

	return &models.SessionUser{UserID: claims.UserID, Email: claims.Email}, nil
}

func signSegment(secret []byte, segment string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(segment))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
