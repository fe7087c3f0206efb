package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor the rest of the deployment was
// provisioned with; raising it invalidates no hashes but slows logins.
const bcryptCost = 10

// HashPassword returns a salted one-way bcrypt hash of the raw password.
func HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored hash. Comparison is
// done by bcrypt itself, which is constant-time in the hash comparison.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
