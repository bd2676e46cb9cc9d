// Package secret turns a secret (PIN, password, security answer) into a
// durable, non-reversible, self-describing record, and verifies inputs
// against stored records. Values stored before hashing was introduced
// ("legacy" plaintext) are detected and can be migrated after a successful
// verification.
package secret

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"

	"golang.org/x/crypto/pbkdf2"

	"github.com/lulemo/habitlock/internal/randx"
)

const (
	// DefaultIterations is the PBKDF2 iteration count used for new records.
	// Verification always uses the count stored in the record itself, so
	// raising this value never invalidates existing records.
	DefaultIterations = 120_000

	algorithm     = "PBKDF2-SHA256"
	recordVersion = 1
	keyLen        = 32
	saltLen       = 16
)

// Record is the persisted form of a hashed secret:
//
//	{"v":1,"algo":"PBKDF2-SHA256","i":120000,"s":"<b64 salt>","h":"<b64 hash>"}
//
// Each record carries its own random salt and iteration count.
type Record struct {
	Version    int    `json:"v"`
	Algorithm  string `json:"algo"`
	Iterations int    `json:"i"`
	Salt       string `json:"s"`
	Hash       string `json:"h"`
}

// Kind classifies a stored secret value.
type Kind int

const (
	// KindEmpty means nothing is stored. Verification fails closed.
	KindEmpty Kind = iota
	// KindLegacy means a non-empty value that is not a Record: a plaintext
	// secret from before hashing was introduced.
	KindLegacy
	// KindModern means a well-formed Record.
	KindModern
)

// Parse classifies stored and, for KindModern, returns the decoded record.
func Parse(stored string) (Record, Kind) {
	if stored == "" {
		return Record{}, KindEmpty
	}
	var rec Record
	if err := json.Unmarshal([]byte(stored), &rec); err != nil {
		return Record{}, KindLegacy
	}
	if rec.Version != recordVersion || rec.Algorithm != algorithm ||
		rec.Iterations <= 0 || rec.Salt == "" || rec.Hash == "" {
		return Record{}, KindLegacy
	}
	return rec, KindModern
}

// IsLegacy reports whether stored is a non-empty value that does not parse
// as a Record.
func IsLegacy(stored string) bool {
	_, kind := Parse(stored)
	return kind == KindLegacy
}

// Derive runs PBKDF2-HMAC-SHA256 over the secret with the given salt and
// iteration count, producing a 256-bit key.
func Derive(secretValue string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(secretValue), salt, iterations, keyLen, sha256.New)
}

// NewSalt returns a fresh random salt, never reused across secrets.
func NewSalt() ([]byte, error) {
	return randx.Bytes(saltLen)
}

// Hash derives a record from the secret with a fresh salt and the current
// default iteration count, and returns its serialized form.
func Hash(secretValue string) (string, error) {
	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	rec := Record{
		Version:    recordVersion,
		Algorithm:  algorithm,
		Iterations: DefaultIterations,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Hash:       base64.StdEncoding.EncodeToString(Derive(secretValue, salt, DefaultIterations)),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks input against a stored value. A Record is verified by
// re-deriving with its own salt and iteration count; a legacy value by raw
// equality. Empty or malformed stored values fail closed; Verify never
// panics or errors on bad input.
func Verify(input, stored string) bool {
	rec, kind := Parse(stored)
	switch kind {
	case KindEmpty:
		return false
	case KindLegacy:
		return subtle.ConstantTimeCompare([]byte(input), []byte(stored)) == 1
	}

	salt, err := base64.StdEncoding.DecodeString(rec.Salt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(rec.Hash)
	if err != nil {
		return false
	}
	got := Derive(input, salt, rec.Iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Upgrade re-hashes input when stored is a legacy value, returning the new
// record and true. Callers invoke it immediately after a successful Verify
// against a legacy value, and must persist the result before signalling
// success. Re-running it on an already-migrated value returns ("", false).
func Upgrade(input, stored string) (string, bool, error) {
	if !IsLegacy(stored) {
		return "", false, nil
	}
	rec, err := Hash(input)
	if err != nil {
		return "", false, err
	}
	return rec, true, nil
}
