// Package store defines the device-local credential storage consumed by the
// lock subsystem, with in-memory and JSON-file implementations.
package store

// Logical keys understood by the lock subsystem.
const (
	KeyPIN              = "pin"
	KeySecurityQuestion = "security_question"
	KeySecurityAnswer   = "security_answer"
	KeyBiometricEnabled = "biometric_enabled"
)

// CredentialStore is a keyed string store backed by whatever the platform
// offers (preferences, keychain, a file). A missing key reads as "".
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// RemovePIN clears the stored PIN together with the security question and
// answer tied to it. Used both by the settings screen and by the
// forgot-PIN reset path.
func RemovePIN(s CredentialStore) error {
	for _, key := range []string{KeyPIN, KeySecurityQuestion, KeySecurityAnswer} {
		if err := s.Remove(key); err != nil {
			return err
		}
	}
	return nil
}
