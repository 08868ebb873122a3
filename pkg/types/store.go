package types

import "errors"

// Subscription is a handle to a live watch. Cancel stops delivery and
// releases the handle; it is idempotent and safe to call concurrently with
// an in-flight notification.
type Subscription interface {
	Cancel()
}

// Store defines the interface for backend-agnostic inventory storage.
// Callers attach to a backend, operate on the medicine, history, and
// credential collections, and detach when done.
//
// Watch callbacks for one subscription are delivered in order, one at a
// time, on a goroutine owned by the store; callbacks must not call back
// into the store synchronously from themselves.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach cancels outstanding subscriptions and releases backend
	// resources. Idempotent: multiple calls succeed. After Detach,
	// operations return ErrStoreDetached.
	Detach() error

	// PutMedicine creates or updates a medicine. When m.ID is empty a new
	// UUID v7 is generated and timestamps are set; otherwise the existing
	// record is updated (ErrNotFound if the ID is unknown). Returns the
	// actual ID used.
	PutMedicine(m *Medicine) (string, error)

	// GetMedicine retrieves a medicine by ID.
	// Returns ErrNotFound if no record exists with that ID.
	GetMedicine(id string) (*Medicine, error)

	// DeleteMedicine removes the medicine with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	DeleteMedicine(id string) error

	// ListMedicines returns every medicine ordered by name ascending.
	ListMedicines() ([]Medicine, error)

	// AdjustStock applies delta to the stored stock atomically, clamping
	// the result at zero. Returns the stock before and after the write.
	// Returns ErrNotFound if the ID is unknown.
	AdjustStock(id string, delta int) (before, after int, err error)

	// SearchMedicines returns medicines whose name contains query
	// (case-insensitive), ordered by name, at most limit records.
	SearchMedicines(query string, limit int) ([]Medicine, error)

	// AppendHistory persists an audit entry. A new UUID v7 is generated;
	// returns the assigned ID.
	AppendHistory(e *HistoryEntry) (string, error)

	// ListHistory returns the most recent entries for a medicine, newest
	// first, at most limit records.
	ListHistory(medicineID string, limit int) ([]HistoryEntry, error)

	// WatchMedicines registers fn to receive the full name-ordered medicine
	// set after every medicine mutation.
	WatchMedicines(fn func([]Medicine)) (Subscription, error)

	// WatchHistory registers fn to receive the most recent limit entries
	// for the given medicine, newest first, after every history append
	// touching it.
	WatchHistory(medicineID string, limit int, fn func([]HistoryEntry)) (Subscription, error)

	// PutCredential stores a local account. Returns ErrEmailInUse if a
	// different account already owns the email.
	PutCredential(c *Credential) error

	// GetCredentialByEmail retrieves a local account by email.
	// Returns ErrNotFound if no account exists with that email.
	GetCredentialByEmail(email string) (*Credential, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Record operation errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid record ID")
	ErrInvalidData   = errors.New("invalid record data")
	ErrInvalidName   = errors.New("invalid name")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// Lifecycle state errors.
var (
	ErrInvalidTransition = errors.New("invalid readiness transition")
)
