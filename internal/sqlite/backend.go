// Package sqlite implements the SQLite storage backend for Stockroom.
// It persists medicines, history entries, and local credentials, and feeds
// live watch subscriptions after every mutation.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/apothekit/stockroom/internal/watch"
	"github.com/apothekit/stockroom/pkg/types"
)

// Compile-time interface check: Backend must implement Store.
var _ types.Store = (*Backend)(nil)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "stockroom.db"

// Backend implements the Store interface over a single SQLite database.
// Watch notifications are computed inside the mutating call and delivered
// asynchronously through the notifier, so subscribers observe mutations in
// the order they committed.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	watch    *watch.Notifier
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{watch: watch.NewNotifier()}
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist and applies the schema. Existing data is
// kept; the schema statements are idempotent.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}
	config = config.Normalize()

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach cancels every outstanding subscription and closes the database.
// After Detach, all operations return ErrStoreDetached. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}

	b.watch.CancelAll()

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// acquire takes the read lock and checks the attached flag. The caller must
// call release exactly once when done.
func (b *Backend) acquire() error {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return types.ErrStoreDetached
	}
	return nil
}

func (b *Backend) release() {
	b.mu.RUnlock()
}

// generateUUID generates a new UUID v7 for record IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
