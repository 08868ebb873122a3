package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apothekit/stockroom/pkg/types"
)

func TestPutCredentialAndLookup(t *testing.T) {
	b := attachedBackend(t)

	cred := &types.Credential{UID: "u1", Email: "a@example.com", PasswordHash: "hash"}
	require.NoError(t, b.PutCredential(cred))

	got, err := b.GetCredentialByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPutCredentialEmailUniqueness(t *testing.T) {
	b := attachedBackend(t)

	require.NoError(t, b.PutCredential(&types.Credential{UID: "u1", Email: "a@example.com", PasswordHash: "h1"}))

	err := b.PutCredential(&types.Credential{UID: "u2", Email: "a@example.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, types.ErrEmailInUse)

	// Same account may rewrite its own credential.
	require.NoError(t, b.PutCredential(&types.Credential{UID: "u1", Email: "a@example.com", PasswordHash: "h3"}))

	got, err := b.GetCredentialByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
}

func TestGetCredentialByEmailNotFound(t *testing.T) {
	b := attachedBackend(t)

	_, err := b.GetCredentialByEmail("missing@example.com")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPutCredentialValidation(t *testing.T) {
	b := attachedBackend(t)

	assert.ErrorIs(t, b.PutCredential(nil), types.ErrInvalidData)
	assert.ErrorIs(t, b.PutCredential(&types.Credential{Email: "a@example.com"}), types.ErrInvalidData)
}
