package inventory

import (
	"sync"

	"github.com/apothekit/stockroom/pkg/types"
)

// HistoryReader follows the audit log of one medicine at a time, keeping
// the most recent window of entries, newest first. Loading a different
// medicine disposes the previous subscription first, so at most one history
// subscription is live per reader.
type HistoryReader struct {
	repo   *Repository
	window int

	mu         sync.Mutex
	medicineID string
	generation int
	entries    []types.HistoryEntry
}

// NewHistoryReader creates a reader over repo keeping up to window entries.
// A zero window falls back to the default.
func NewHistoryReader(repo *Repository, window int) *HistoryReader {
	if window <= 0 {
		window = types.DefaultHistoryWindow
	}
	return &HistoryReader{repo: repo, window: window}
}

// Load switches the reader to the given medicine: the prior subscription is
// disposed, the current window is fetched once, and the live subscription
// keeps it fresh afterwards.
func (h *HistoryReader) Load(medicineID string) error {
	if medicineID == "" {
		return types.ErrInvalidID
	}

	h.mu.Lock()
	h.generation++
	gen := h.generation
	h.medicineID = medicineID
	h.entries = nil
	h.mu.Unlock()

	// SubscribeHistory disposes the repository's previous history
	// subscription before establishing the new one.
	if _, err := h.repo.SubscribeHistory(medicineID, h.window, func(entries []types.HistoryEntry) {
		h.onPush(gen, entries)
	}); err != nil {
		return err
	}

	entries, err := h.repo.ListHistory(medicineID, h.window)
	if err != nil {
		return err
	}

	h.mu.Lock()
	// A push that raced the initial fetch already carries at least this
	// much, so only fill in when nothing arrived yet.
	if gen == h.generation && h.entries == nil {
		h.entries = entries
	}
	h.mu.Unlock()
	return nil
}

// onPush replaces the window with a pushed update, unless the reader moved
// on to another medicine.
func (h *HistoryReader) onPush(gen int, entries []types.HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.generation {
		return
	}
	if len(entries) > h.window {
		entries = entries[:h.window]
	}
	h.entries = entries
}

// MedicineID returns the medicine currently followed, or empty.
func (h *HistoryReader) MedicineID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.medicineID
}

// Entries returns a copy of the current window, newest first.
func (h *HistoryReader) Entries() []types.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Cleanup disposes the subscription and clears the window. Idempotent.
func (h *HistoryReader) Cleanup() {
	h.mu.Lock()
	h.generation++
	h.medicineID = ""
	h.entries = nil
	h.mu.Unlock()

	h.repo.DisposeHistory()
}
