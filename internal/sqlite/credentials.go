// This file implements the credentials collection backing the local
// identity provider. Email uniqueness is enforced here so the provider can
// surface ErrEmailInUse without parsing driver errors.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/apothekit/stockroom/pkg/types"
)

// PutCredential stores a local account keyed by UID. Returns ErrEmailInUse
// if a different account already owns the email.
func (b *Backend) PutCredential(c *types.Credential) error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.release()

	if c == nil || c.UID == "" || c.Email == "" || c.PasswordHash == "" {
		return types.ErrInvalidData
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRow("SELECT uid FROM credentials WHERE email = ?", c.Email).Scan(&owner)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("checking email ownership: %w", err)
	}
	if err == nil && owner != c.UID {
		return types.ErrEmailInUse
	}

	_, err = tx.Exec(
		`INSERT INTO credentials (uid, email, password_hash, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET email = excluded.email, password_hash = excluded.password_hash`,
		c.UID, c.Email, c.PasswordHash, formatTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	return tx.Commit()
}

// GetCredentialByEmail retrieves a local account by email.
// Returns ErrNotFound if no account exists with that email.
func (b *Backend) GetCredentialByEmail(email string) (*types.Credential, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	if email == "" {
		return nil, types.ErrInvalidData
	}

	var c types.Credential
	var createdAt string
	err := b.db.QueryRow(
		"SELECT uid, email, password_hash, created_at FROM credentials WHERE email = ?",
		email,
	).Scan(&c.UID, &c.Email, &c.PasswordHash, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting credential for %s: %w", email, err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
