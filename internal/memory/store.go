// Package memory provides an in-memory implementation of the Store
// interface, used for tests and ephemeral runs. It honors the same
// contract as the SQLite backend, including watch fan-out and the
// Attach/Detach lifecycle.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apothekit/stockroom/internal/watch"
	"github.com/apothekit/stockroom/pkg/types"
)

// Compile-time interface check: Store must implement types.Store.
var _ types.Store = (*Store)(nil)

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	attached bool

	medicines   map[string]types.Medicine
	history     map[string][]types.HistoryEntry // keyed by medicine ID, append order
	credentials map[string]types.Credential     // keyed by UID

	watch *watch.Notifier
}

// NewStore creates a new in-memory store instance.
// The store is not attached; call Attach with a Config to initialize.
func NewStore() *Store {
	return &Store{watch: watch.NewNotifier()}
}

// Attach initializes the collections.
// Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	s.medicines = make(map[string]types.Medicine)
	s.history = make(map[string][]types.HistoryEntry)
	s.credentials = make(map[string]types.Credential)
	s.attached = true
	return nil
}

// Detach cancels outstanding subscriptions and drops all data. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil // idempotent
	}

	s.watch.CancelAll()
	s.medicines = nil
	s.history = nil
	s.credentials = nil
	s.attached = false
	return nil
}

// PutMedicine creates or updates a medicine. Returns the actual ID used.
func (s *Store) PutMedicine(m *types.Medicine) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return "", types.ErrStoreDetached
	}
	if m == nil {
		return "", types.ErrInvalidData
	}
	if err := m.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	m.Stock = types.ClampStock(m.Stock)

	if m.ID == "" {
		m.ID = generateUUID()
		m.CreatedAt = now
	} else if _, ok := s.medicines[m.ID]; !ok {
		return "", types.ErrNotFound
	}
	m.UpdatedAt = now

	s.medicines[m.ID] = *m
	s.notifyMedicinesLocked()
	return m.ID, nil
}

// GetMedicine retrieves a medicine by ID.
func (s *Store) GetMedicine(id string) (*types.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	m, ok := s.medicines[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	copied := m
	return &copied, nil
}

// DeleteMedicine removes the medicine with the given ID.
func (s *Store) DeleteMedicine(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}
	if _, ok := s.medicines[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.medicines, id)
	s.notifyMedicinesLocked()
	return nil
}

// ListMedicines returns every medicine ordered by name ascending.
func (s *Store) ListMedicines() ([]types.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.listMedicinesLocked(), nil
}

// AdjustStock applies delta atomically under the store mutex, clamping the
// result at zero.
func (s *Store) AdjustStock(id string, delta int) (before, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return 0, 0, types.ErrStoreDetached
	}
	if id == "" {
		return 0, 0, types.ErrInvalidID
	}
	m, ok := s.medicines[id]
	if !ok {
		return 0, 0, types.ErrNotFound
	}

	before = m.Stock
	after = types.ClampStock(before + delta)
	m.Stock = after
	m.UpdatedAt = time.Now().UTC()
	s.medicines[id] = m

	s.notifyMedicinesLocked()
	return before, after, nil
}

// SearchMedicines returns medicines whose name contains query
// (case-insensitive), ordered by name, at most limit records.
func (s *Store) SearchMedicines(query string, limit int) ([]types.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	if limit <= 0 {
		return nil, nil
	}

	needle := strings.ToLower(query)
	var out []types.Medicine
	for _, m := range s.listMedicinesLocked() {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// AppendHistory persists an audit entry and returns the assigned ID.
func (s *Store) AppendHistory(e *types.HistoryEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return "", types.ErrStoreDetached
	}
	if e == nil {
		return "", types.ErrInvalidData
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	e.ID = generateUUID()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.history[e.MedicineID] = append(s.history[e.MedicineID], *e)

	s.watch.PublishHistory(e.MedicineID, func(medicineID string, limit int) ([]types.HistoryEntry, error) {
		return s.listHistoryLocked(medicineID, limit), nil
	})
	return e.ID, nil
}

// ListHistory returns the most recent entries for a medicine, newest first.
func (s *Store) ListHistory(medicineID string, limit int) ([]types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	if medicineID == "" {
		return nil, types.ErrInvalidID
	}
	return s.listHistoryLocked(medicineID, limit), nil
}

// WatchMedicines registers fn for the full medicine set after every mutation.
func (s *Store) WatchMedicines(fn func([]types.Medicine)) (types.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	return s.watch.WatchMedicines(fn), nil
}

// WatchHistory registers fn for the most recent limit entries of a medicine.
func (s *Store) WatchHistory(medicineID string, limit int, fn func([]types.HistoryEntry)) (types.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	if medicineID == "" {
		return nil, types.ErrInvalidID
	}
	return s.watch.WatchHistory(medicineID, limit, fn), nil
}

// PutCredential stores a local account keyed by UID.
func (s *Store) PutCredential(c *types.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	if c == nil || c.UID == "" || c.Email == "" || c.PasswordHash == "" {
		return types.ErrInvalidData
	}
	for uid, existing := range s.credentials {
		if existing.Email == c.Email && uid != c.UID {
			return types.ErrEmailInUse
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.credentials[c.UID] = *c
	return nil
}

// GetCredentialByEmail retrieves a local account by email.
func (s *Store) GetCredentialByEmail(email string) (*types.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}
	for _, c := range s.credentials {
		if c.Email == email {
			copied := c
			return &copied, nil
		}
	}
	return nil, types.ErrNotFound
}

// listMedicinesLocked returns the name-ordered medicine set.
// The caller holds the store lock.
func (s *Store) listMedicinesLocked() []types.Medicine {
	out := make([]types.Medicine, 0, len(s.medicines))
	for _, m := range s.medicines {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// listHistoryLocked returns the newest-first capped window for a medicine.
// The caller holds the store lock.
func (s *Store) listHistoryLocked(medicineID string, limit int) []types.HistoryEntry {
	if limit <= 0 {
		return nil
	}
	entries := s.history[medicineID]
	out := make([]types.HistoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out
}

// notifyMedicinesLocked fans the current set out to watchers.
// The caller holds the store lock; delivery itself is asynchronous.
func (s *Store) notifyMedicinesLocked() {
	s.watch.PublishMedicines(s.listMedicinesLocked())
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
