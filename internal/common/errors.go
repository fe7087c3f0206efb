// Package common defines shared constants and sentinel errors used across
// Llave components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("user already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrUnauthenticated = errors.New("not authenticated")

	// Credential errors. Unknown user and wrong password collapse into the
	// same value so callers cannot tell which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("email is required")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")

	// Second-factor errors.
	ErrInvalidCode   = errors.New("invalid two-factor code")
	ErrNotConfigured = errors.New("two-factor authentication not configured")

	// Token lifecycle errors (invalid, malformed or expired).
	ErrInvalidToken = errors.New("invalid token")

	// Store bootstrap errors.
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidIdentifier = errors.New("invalid database identifier")
)
