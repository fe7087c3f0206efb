package users

import "time"

// User is the identity record persisted in the credential store.
//
// TwoFactorSecret may be set while TwoFactorEnabled is still false: the
// user has started 2FA setup but has not confirmed a code yet. The enabled
// flag only moves false→true, and it is never true without a secret.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	TwoFactorSecret  string
	TwoFactorEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
