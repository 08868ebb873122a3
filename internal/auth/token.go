package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apothekit/stockroom/pkg/types"
)

// keyFileName is the signing-key file kept in the config directory.
const keyFileName = "session.key"

// sessionClaims carries the identity projection inside a session token.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

// NewTokenManager creates a manager signing with key, issuing tokens valid
// for ttl.
func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl}
}

// Issue signs a session token for the given user.
func (t *TokenManager) Issue(user *types.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns the identity it carries.
// Returns ErrSessionExpired for an expired token and ErrNotAuthenticated
// for any other verification failure.
func (t *TokenManager) Parse(tokenString string) (*types.User, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, types.ErrSessionExpired
		}
		return nil, types.ErrNotAuthenticated
	}
	if claims.Subject == "" {
		return nil, types.ErrNotAuthenticated
	}
	return &types.User{UID: claims.Subject, Email: claims.Email}, nil
}

// LoadOrCreateKey returns the signing key stored in dir, generating a fresh
// 32-byte key on first use. The key file is written with mode 0600.
func LoadOrCreateKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, keyFileName)

	data, err := os.ReadFile(path)
	if err == nil {
		key, decErr := hex.DecodeString(string(data))
		if decErr != nil || len(key) == 0 {
			return nil, fmt.Errorf("corrupt signing key at %s", path)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("writing signing key: %w", err)
	}
	return key, nil
}
