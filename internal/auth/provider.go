package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/apothekit/stockroom/pkg/types"
)

// Provider abstracts the identity backend the gateway talks to. The local
// provider below stores credentials in the Store; a hosted provider would
// wrap its SDK behind the same two calls.
type Provider interface {
	// SignUp creates an account. Returns ErrEmailInUse, ErrWeakPassword,
	// or ErrInvalidCredentials for a malformed email.
	SignUp(ctx context.Context, email, password string) (*types.User, error)

	// SignIn verifies credentials. Returns ErrInvalidCredentials on any
	// identity mismatch; unknown email and wrong password are not
	// distinguished.
	SignIn(ctx context.Context, email, password string) (*types.User, error)
}

// LocalProvider implements Provider over the credentials collection of a
// Store, with bcrypt password hashing.
type LocalProvider struct {
	store types.Store
	uidFn func() string // overridable in tests
}

// Compile-time interface check.
var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider creates a provider persisting through store.
func NewLocalProvider(store types.Store) *LocalProvider {
	return &LocalProvider{store: store, uidFn: generateUID}
}

// SignUp validates the email and password, hashes the password, and stores
// a new credential.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	cred := &types.Credential{
		UID:          p.uidFn(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.store.PutCredential(cred); err != nil {
		return nil, err
	}
	return &types.User{UID: cred.UID, Email: cred.Email}, nil
}

// SignIn verifies the password against the stored bcrypt hash. An unknown
// email maps to ErrInvalidCredentials so callers cannot enumerate accounts.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*types.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	cred, err := p.store.GetCredentialByEmail(email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}
	return &types.User{UID: cred.UID, Email: cred.Email}, nil
}

// generateUID produces a stable user identifier.
func generateUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
