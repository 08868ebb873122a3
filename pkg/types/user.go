package types

import (
	"errors"
	"time"
)

// User is the authentication identity projection exposed to the rest of the
// system. It carries no secrets; the stored credential lives in Credential.
type User struct {
	UID   string // Stable identifier, never empty for a signed-in user.
	Email string // May be empty for provider-issued identities.
}

// Credential is the stored form of a local account. Only the identity
// provider and the store touch this type.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Authentication errors. The identity gateway maps provider-specific
// failures onto this closed taxonomy.
var (
	// ErrInvalidCredentials hides whether the email or the password failed,
	// preventing account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrNotAuthenticated   = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
)
