// Package auth implements the session/identity gateway: a local identity
// provider with bcrypt-hashed credentials, JWT session tokens, and a live
// authentication-state stream. Provider-specific failures are mapped onto
// the closed error taxonomy in pkg/types.
package auth

import (
	"strings"
	"unicode"

	"github.com/apothekit/stockroom/pkg/types"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// ValidatePassword enforces the baseline password policy: length bounds
// plus at least one letter and one digit. Violations surface as
// ErrWeakPassword.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return types.ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return types.ErrWeakPassword
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address and applies a
// minimal shape check. The full grammar is the identity provider's
// business; this guards against obviously broken input.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return "", types.ErrInvalidCredentials
	}
	return email, nil
}
