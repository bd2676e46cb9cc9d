package models

import "time"

// Verification code purposes.
const (
	PurposeRegister = "register"
	PurposeReset    = "reset"
)

// EmailVerification is one issued code, stored only as a hash. Rows are
// never deleted; consumption sets ConsumedAt exactly once. Several
// outstanding codes may coexist for the same (email, purpose) and each
// stays valid until its own expiry.
type EmailVerification struct {
	ID         string
	Email      string
	Purpose    string
	CodeHash   string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
