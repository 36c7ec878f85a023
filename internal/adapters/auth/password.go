package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks viewer credentials against a single configured user and bcrypt hash.
type PasswordVerifier struct {
	user string
	hash []byte
}

// NewPasswordVerifier returns a verifier for user with the given bcrypt hash.
// The hash is checked for a valid bcrypt cost so misconfiguration fails at startup.
func NewPasswordVerifier(user, hash string) (*PasswordVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid viewer password hash: %w", err)
	}
	return &PasswordVerifier{user: user, hash: []byte(hash)}, nil
}

// Verify reports whether user and password match.
func (v *PasswordVerifier) Verify(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(v.user)) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for VIEWER_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
