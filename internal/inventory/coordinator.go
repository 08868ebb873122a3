package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/apothekit/stockroom/pkg/types"
)

// searchResultLimit bounds the remote query issued for a search term.
const searchResultLimit = 50

// Snapshot is the immutable view handed to readers. Displayed holds the
// paginated cache window, or the search results while a term is active.
type Snapshot struct {
	Readiness    types.Readiness
	ErrorMessage string
	Displayed    []types.Medicine
	CacheSize    int
	DisplayLimit int
	HasMore      bool
	SearchTerm   string
}

// Coordinator owns the locally cached, paginated, name-ordered view of the
// inventory, fed by the live subscription, and serializes every mutation
// with its audit-log write. All mutable state is confined behind one mutex;
// readers only ever receive copies.
type Coordinator struct {
	repo     *Repository
	logger   *slog.Logger
	pageSize int
	debounce time.Duration

	mu            sync.Mutex
	readiness     types.Readiness
	errorMessage  string
	initialized   bool // one-shot guard for Initialize
	generation    int  // bumped by Cleanup; invalidates late callbacks
	cache         []types.Medicine
	displayLimit  int
	searchTerm    string
	searchResults []types.Medicine
	searchTimer   *time.Timer
}

// NewCoordinator creates a coordinator over repo. Page size and debounce
// come from config; zero values fall back to the defaults.
func NewCoordinator(repo *Repository, config types.Config, logger *slog.Logger) *Coordinator {
	config = config.Normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		repo:         repo,
		logger:       logger,
		pageSize:     config.PageSize,
		debounce:     time.Duration(config.SearchDebounceMS) * time.Millisecond,
		readiness:    types.NewReadiness(),
		displayLimit: config.PageSize,
	}
}

// Initialize performs the one-shot load and then starts the live
// subscription. Invoking it while already initialized is a no-op, so
// repeated lifecycle events cannot set up duplicate subscriptions. On
// failure the one-shot guard is released so an explicit retry can run
// Initialize again.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	if err := c.readiness.Transition(types.PhaseLoading); err != nil {
		c.initialized = false
		c.mu.Unlock()
		return err
	}
	gen := c.generation
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		c.failInitialize(gen, err.Error())
		return err
	}

	// One-shot load, not yet the live subscription. Pushes that would
	// arrive mid-load are ignored because the phase is not ready yet.
	records, err := c.repo.ListMedicines()
	if err != nil {
		c.failInitialize(gen, err.Error())
		return err
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil // torn down mid-load
	}
	if err := c.readiness.Transition(types.PhaseReady); err != nil {
		c.mu.Unlock()
		return err
	}
	c.cache = records
	c.mu.Unlock()

	// The subscription starts only after the one-shot result is in place.
	if _, err := c.repo.SubscribeMedicines(func(ms []types.Medicine) {
		c.onMedicinesPush(gen, ms)
	}); err != nil {
		c.failInitialize(gen, err.Error())
		return err
	}

	c.logger.Debug("coordinator ready", "records", len(records))
	return nil
}

// failInitialize records a load failure and releases the one-shot guard.
func (c *Coordinator) failInitialize(gen int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err := c.readiness.Fail(message); err != nil {
		// Subscription setup can fail after the phase reached ready;
		// force the error state so the failure stays observable.
		c.readiness = types.Readiness{Phase: types.PhaseError, Message: message}
	}
	c.errorMessage = message
	c.initialized = false
	c.cache = nil
}

// onMedicinesPush replaces the cache with a pushed result set. Pushes are
// dropped while not ready and after teardown.
func (c *Coordinator) onMedicinesPush(gen int, medicines []types.Medicine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || !c.readiness.Ready() {
		return
	}
	c.cache = medicines
}

// Snapshot returns a copy of the published state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var displayed []types.Medicine
	if c.searchTerm != "" {
		displayed = append(displayed, c.searchResults...)
	} else {
		limit := c.displayLimit
		if limit > len(c.cache) {
			limit = len(c.cache)
		}
		displayed = append(displayed, c.cache[:limit]...)
	}

	return Snapshot{
		Readiness:    c.readiness,
		ErrorMessage: c.errorMessage,
		Displayed:    displayed,
		CacheSize:    len(c.cache),
		DisplayLimit: c.displayLimit,
		HasMore:      c.searchTerm == "" && c.displayLimit < len(c.cache),
		SearchTerm:   c.searchTerm,
	}
}

// Readiness returns the current lifecycle state.
func (c *Coordinator) Readiness() types.Readiness {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readiness
}

// ErrorMessage returns the last surfaced error, or empty.
func (c *Coordinator) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMessage
}

// UpdateStock applies delta to the record's stock, clamped at zero, and
// logs one audit entry with the before/after values. An ID not present in
// the local cache is an observable ErrNotFound, not a silent no-op.
func (c *Coordinator) UpdateStock(ctx context.Context, id string, delta int) error {
	user, err := c.repo.ActiveUser()
	if err != nil {
		return c.surface(err)
	}

	c.mu.Lock()
	cached, ok := c.lookupLocked(id)
	c.mu.Unlock()
	if !ok {
		return c.surface(fmt.Errorf("stock update for %s: %w", id, types.ErrNotFound))
	}

	before, after, err := c.repo.AdjustStock(id, delta)
	if err != nil {
		return c.surface(err)
	}

	action := fmt.Sprintf("Added %d to %s", delta, cached.Name)
	if delta < 0 {
		action = fmt.Sprintf("Removed %d from %s", -delta, cached.Name)
	}
	entry := &types.HistoryEntry{
		MedicineID: id,
		User:       userLabel(user),
		Action:     action,
		Details:    fmt.Sprintf("Stock changed from %d to %d", before, after),
	}
	return c.audit(entry)
}

// AddMedicine creates a record and logs one audit entry.
func (c *Coordinator) AddMedicine(ctx context.Context, name string, stock int, aisle string) error {
	user, err := c.repo.ActiveUser()
	if err != nil {
		return c.surface(err)
	}

	m := &types.Medicine{Name: name, Stock: types.ClampStock(stock), Aisle: aisle}
	id, err := c.repo.AddMedicine(m)
	if err != nil {
		return c.surface(err)
	}

	entry := &types.HistoryEntry{
		MedicineID: id,
		User:       userLabel(user),
		Action:     fmt.Sprintf("Added %s", name),
		Details:    fmt.Sprintf("Initial stock %d in aisle %s", m.Stock, aisle),
	}
	return c.audit(entry)
}

// UpdateMedicine persists changes to an existing record and logs one audit
// entry. A record without an ID is an observable ErrInvalidData; the store
// is not invoked and nothing is logged.
func (c *Coordinator) UpdateMedicine(ctx context.Context, m *types.Medicine) error {
	user, err := c.repo.ActiveUser()
	if err != nil {
		return c.surface(err)
	}
	if m == nil || m.ID == "" {
		return c.surface(types.ErrInvalidData)
	}

	if err := c.repo.UpdateMedicine(m); err != nil {
		return c.surface(err)
	}

	entry := &types.HistoryEntry{
		MedicineID: m.ID,
		User:       userLabel(user),
		Action:     fmt.Sprintf("Updated %s", m.Name),
		Details:    fmt.Sprintf("Stock %d, aisle %s", m.Stock, m.Aisle),
	}
	return c.audit(entry)
}

// DeleteMedicine removes a record and logs one audit entry. The name is
// passed by the caller because the record is gone by the time the entry is
// written.
func (c *Coordinator) DeleteMedicine(ctx context.Context, id, name string) error {
	user, err := c.repo.ActiveUser()
	if err != nil {
		return c.surface(err)
	}

	if err := c.repo.DeleteMedicine(id); err != nil {
		return c.surface(err)
	}

	entry := &types.HistoryEntry{
		MedicineID: id,
		User:       userLabel(user),
		Action:     fmt.Sprintf("Deleted %s", name),
		Details:    fmt.Sprintf("Removed %s from inventory", name),
	}
	return c.audit(entry)
}

// audit writes the single audit entry that follows a successful primary
// mutation. A failure here is surfaced but the primary write stands; the
// inconsistency window is accepted.
func (c *Coordinator) audit(entry *types.HistoryEntry) error {
	if _, err := c.repo.AppendHistory(entry); err != nil {
		c.logger.Warn("audit write failed after successful mutation",
			"medicine_id", entry.MedicineID, "action", entry.Action, "error", err)
		return c.surface(fmt.Errorf("audit write: %w", err))
	}
	c.clearError()
	return nil
}

// surface records err as the process-visible error message and returns it.
func (c *Coordinator) surface(err error) error {
	c.mu.Lock()
	c.errorMessage = err.Error()
	c.mu.Unlock()
	return err
}

func (c *Coordinator) clearError() {
	c.mu.Lock()
	c.errorMessage = ""
	c.mu.Unlock()
}

// Aisles returns the sorted, duplicate-free aisle values in the cache.
func (c *Coordinator) Aisles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.cache))
	var out []string
	for _, m := range c.cache {
		if !seen[m.Aisle] {
			seen[m.Aisle] = true
			out = append(out, m.Aisle)
		}
	}
	sort.Strings(out)
	return out
}

// MedicinesForAisle returns the cached records with an exact aisle match.
func (c *Coordinator) MedicinesForAisle(aisle string) []types.Medicine {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []types.Medicine
	for _, m := range c.cache {
		if m.Aisle == aisle {
			out = append(out, m)
		}
	}
	return out
}

// MedicineByID returns the cached record with the given ID, if present.
func (c *Coordinator) MedicineByID(id string) (*types.Medicine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(id)
}

// lookupLocked returns a copy of the cached record. Caller holds c.mu.
func (c *Coordinator) lookupLocked(id string) (*types.Medicine, bool) {
	for _, m := range c.cache {
		if m.ID == id {
			copied := m
			return &copied, true
		}
	}
	return nil, false
}

// ShowMore advances the pagination cursor by one page, capped at the cache
// size.
func (c *Coordinator) ShowMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayLimit += c.pageSize
	if c.displayLimit > len(c.cache) {
		c.displayLimit = len(c.cache)
	}
}

// HasMoreToShow reports whether the cursor is below the cache size.
func (c *Coordinator) HasMoreToShow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayLimit < len(c.cache)
}

// SetSearchTerm schedules a debounced remote search. Each call cancels any
// pending query, so only the query for the final term in a burst executes.
// An empty term clears the search synchronously and restores the live view.
func (c *Coordinator) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	c.searchTerm = term
	if term == "" {
		c.searchResults = nil
		return
	}

	gen := c.generation
	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.runSearch(gen, term)
	})
}

// runSearch executes the debounced query. Results are dropped if the term
// changed again or the coordinator was torn down while the query ran.
func (c *Coordinator) runSearch(gen int, term string) {
	results, err := c.repo.Search(term, searchResultLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.searchTerm != term {
		return
	}
	if err != nil {
		c.errorMessage = err.Error()
		return
	}
	c.searchResults = results
}

// Retry re-runs Initialize after a load failure. It is only meaningful
// from the error phase; otherwise it is a no-op.
func (c *Coordinator) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.readiness.Phase != types.PhaseError {
		c.mu.Unlock()
		return nil
	}
	// Rewind to initializing so Initialize can drive the loading
	// transition itself.
	if err := c.readiness.Transition(types.PhaseInitializing); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	return c.Initialize(ctx)
}

// Cleanup disposes all subscriptions, clears the cache and search state,
// and resets readiness, the one-shot guard, and the pagination cursor.
// Safe to call repeatedly and concurrently with late callbacks.
func (c *Coordinator) Cleanup() {
	c.mu.Lock()
	c.generation++
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	c.cache = nil
	c.searchTerm = ""
	c.searchResults = nil
	c.errorMessage = ""
	c.displayLimit = c.pageSize
	c.initialized = false
	c.readiness = types.NewReadiness()
	c.mu.Unlock()

	c.repo.DisposeAll()
}

// userLabel picks the audit identifier for a user: email when present,
// otherwise the uid.
func userLabel(user *types.User) string {
	if user.Email != "" {
		return user.Email
	}
	return user.UID
}
