// Package inventory implements the inventory core: the authenticated
// Repository over a Store, the Coordinator that owns the cached view and
// its readiness state machine, and the HistoryReader for per-record audit
// logs.
package inventory

import (
	"sync"

	"github.com/apothekit/stockroom/pkg/types"
)

// Session provides the identity of the active user. The auth gateway
// satisfies this.
type Session interface {
	CurrentUser() *types.User
}

// Repository couples a Store with a session source. Every operation checks
// for an active session first and fails with ErrNotAuthenticated otherwise.
// A repository holds at most one live medicines subscription and one live
// history subscription; establishing a new one disposes the previous one.
type Repository struct {
	store   types.Store
	session Session

	mu      sync.Mutex
	medSub  types.Subscription
	histSub types.Subscription
}

// NewRepository creates a repository over store using session for identity.
func NewRepository(store types.Store, session Session) *Repository {
	return &Repository{store: store, session: session}
}

// ActiveUser returns the signed-in user, or ErrNotAuthenticated.
func (r *Repository) ActiveUser() (*types.User, error) {
	user := r.session.CurrentUser()
	if user == nil {
		return nil, types.ErrNotAuthenticated
	}
	return user, nil
}

// AddMedicine persists a new record and returns its assigned ID.
// The record must not carry an ID yet.
func (r *Repository) AddMedicine(m *types.Medicine) (string, error) {
	if _, err := r.ActiveUser(); err != nil {
		return "", err
	}
	if m == nil || m.ID != "" {
		return "", types.ErrInvalidData
	}
	return r.store.PutMedicine(m)
}

// UpdateMedicine persists changes to an existing record.
// Returns ErrInvalidData if the record has no ID.
func (r *Repository) UpdateMedicine(m *types.Medicine) error {
	if _, err := r.ActiveUser(); err != nil {
		return err
	}
	if m == nil || m.ID == "" {
		return types.ErrInvalidData
	}
	_, err := r.store.PutMedicine(m)
	return err
}

// DeleteMedicine removes a record by ID.
func (r *Repository) DeleteMedicine(id string) error {
	if _, err := r.ActiveUser(); err != nil {
		return err
	}
	return r.store.DeleteMedicine(id)
}

// AdjustStock applies delta to a record's stock atomically in the store,
// clamped at zero. Returns the stock before and after.
func (r *Repository) AdjustStock(id string, delta int) (before, after int, err error) {
	if _, err := r.ActiveUser(); err != nil {
		return 0, 0, err
	}
	return r.store.AdjustStock(id, delta)
}

// ListMedicines returns the full record set ordered by name.
func (r *Repository) ListMedicines() ([]types.Medicine, error) {
	if _, err := r.ActiveUser(); err != nil {
		return nil, err
	}
	return r.store.ListMedicines()
}

// Search returns records whose name matches query, bounded to limit.
func (r *Repository) Search(query string, limit int) ([]types.Medicine, error) {
	if _, err := r.ActiveUser(); err != nil {
		return nil, err
	}
	return r.store.SearchMedicines(query, limit)
}

// AppendHistory writes one audit entry.
func (r *Repository) AppendHistory(e *types.HistoryEntry) (string, error) {
	if _, err := r.ActiveUser(); err != nil {
		return "", err
	}
	return r.store.AppendHistory(e)
}

// ListHistory returns the most recent entries for a record, newest first.
func (r *Repository) ListHistory(medicineID string, limit int) ([]types.HistoryEntry, error) {
	if _, err := r.ActiveUser(); err != nil {
		return nil, err
	}
	return r.store.ListHistory(medicineID, limit)
}

// SubscribeMedicines starts the live medicines subscription, disposing any
// previous one held by this repository.
func (r *Repository) SubscribeMedicines(fn func([]types.Medicine)) (types.Subscription, error) {
	if _, err := r.ActiveUser(); err != nil {
		return nil, err
	}
	sub, err := r.store.WatchMedicines(fn)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prev := r.medSub
	r.medSub = sub
	r.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return sub, nil
}

// SubscribeHistory starts the live history subscription for one record,
// disposing any previous one held by this repository.
func (r *Repository) SubscribeHistory(medicineID string, limit int, fn func([]types.HistoryEntry)) (types.Subscription, error) {
	if _, err := r.ActiveUser(); err != nil {
		return nil, err
	}
	sub, err := r.store.WatchHistory(medicineID, limit, fn)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prev := r.histSub
	r.histSub = sub
	r.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	return sub, nil
}

// DisposeHistory tears down the history subscription only, leaving the
// medicines subscription live. Idempotent.
func (r *Repository) DisposeHistory() {
	r.mu.Lock()
	histSub := r.histSub
	r.histSub = nil
	r.mu.Unlock()

	if histSub != nil {
		histSub.Cancel()
	}
}

// DisposeAll tears down every outstanding subscription. Idempotent; must be
// called before the session closes so no push arrives for an
// unauthenticated context.
func (r *Repository) DisposeAll() {
	r.mu.Lock()
	medSub, histSub := r.medSub, r.histSub
	r.medSub, r.histSub = nil, nil
	r.mu.Unlock()

	if medSub != nil {
		medSub.Cancel()
	}
	if histSub != nil {
		histSub.Cancel()
	}
}
