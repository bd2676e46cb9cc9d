// Package apperr defines sentinel errors shared by the device lock flow and
// the server-side auth services. Callers should use errors.Is to match them.
package apperr

import "errors"

var (
	// ErrValidation covers malformed input: bad email shape, short password,
	// missing fields.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication covers wrong credentials: password, PIN, security
	// answer, or an expired access token.
	ErrAuthentication = errors.New("authentication failed")

	// ErrAuthorization covers a disabled account or insufficient role.
	ErrAuthorization = errors.New("not allowed")

	// ErrNotFound covers unknown users and sessions.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when registering an email twice.
	ErrAlreadyExists = errors.New("already exists")

	// ErrExpiredOrConsumed covers verification codes past their expiry or
	// already used once.
	ErrExpiredOrConsumed = errors.New("code expired or already used")

	// ErrIntegrity covers access tokens whose signature does not match the
	// payload, i.e. tampering or a wrong signing secret.
	ErrIntegrity = errors.New("token integrity check failed")

	// ErrInternal is the generic wrapper for unexpected failures.
	ErrInternal = errors.New("internal error")
)
