// Package randx provides crypto/rand-backed helpers for tokens, row ids,
// numeric verification codes, and secure memory wiping.
package randx

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// HexString generates a random hexadecimal string from size random bytes.
// The resulting string is twice as long as size.
func HexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Bytes returns size cryptographically random bytes.
func Bytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// PrefixedID returns a typed row id such as "usr_1b4e28ba-...". The prefix
// makes ids self-describing in logs and database dumps.
func PrefixedID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NumericCode returns a random numeric string of exactly digits characters,
// left-padded with zeros. Used for email verification codes.
func NumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// Wipe overwrites the slice with zeros. Useful for removing PINs and
// passwords from memory after use. A nil slice is a no-op.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
