package inventory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apothekit/stockroom/pkg/types"
)

func appendEntries(t *testing.T, r *Repository, medicineID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := r.AppendHistory(&types.HistoryEntry{
			MedicineID: medicineID,
			User:       "alice@example.com",
			Action:     fmt.Sprintf("Action %02d", i),
		})
		require.NoError(t, err)
	}
}

func waitForEntries(t *testing.T, h *HistoryReader, want int) []types.HistoryEntry {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(h.Entries()) == want
	}, pushTimeout, 10*time.Millisecond, "window never reached %d entries", want)
	return h.Entries()
}

func TestHistoryReaderLoadsWindow(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	id := seedMedicine(t, repo, "Aspirin", 5, "A")
	appendEntries(t, repo, id, 3)

	h := NewHistoryReader(repo, 20)
	t.Cleanup(h.Cleanup)
	require.NoError(t, h.Load(id))

	entries := waitForEntries(t, h, 3)
	assert.Equal(t, "Action 02", entries[0].Action, "newest first")
	assert.Equal(t, id, h.MedicineID())
}

func TestHistoryReaderCapsWindow(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	id := seedMedicine(t, repo, "Aspirin", 5, "A")
	appendEntries(t, repo, id, 25)

	h := NewHistoryReader(repo, 20)
	t.Cleanup(h.Cleanup)
	require.NoError(t, h.Load(id))

	entries := waitForEntries(t, h, 20)
	assert.Equal(t, "Action 24", entries[0].Action)
	assert.Equal(t, "Action 05", entries[19].Action)
}

func TestHistoryReaderFollowsPushes(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	id := seedMedicine(t, repo, "Aspirin", 5, "A")

	h := NewHistoryReader(repo, 20)
	t.Cleanup(h.Cleanup)
	require.NoError(t, h.Load(id))
	waitForEntries(t, h, 0)

	appendEntries(t, repo, id, 2)
	entries := waitForEntries(t, h, 2)
	assert.Equal(t, "Action 01", entries[0].Action)
}

func TestHistoryReaderSwitchingDisposesPrior(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	first := seedMedicine(t, repo, "Aspirin", 5, "A")
	second := seedMedicine(t, repo, "Ibuprofen", 3, "B")
	appendEntries(t, repo, first, 2)

	h := NewHistoryReader(repo, 20)
	t.Cleanup(h.Cleanup)
	require.NoError(t, h.Load(first))
	waitForEntries(t, h, 2)

	require.NoError(t, h.Load(second))
	assert.Equal(t, second, h.MedicineID())
	assert.Empty(t, waitForEntries(t, h, 0))

	// Writes against the previous record must not reappear in the window.
	appendEntries(t, repo, first, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.Entries())

	appendEntries(t, repo, second, 1)
	entries := waitForEntries(t, h, 1)
	assert.Equal(t, second, entries[0].MedicineID)
}

func TestHistoryReaderRejectsEmptyID(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	h := NewHistoryReader(repo, 20)
	assert.ErrorIs(t, h.Load(""), types.ErrInvalidID)
}

func TestHistoryReaderCleanupIdempotent(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	id := seedMedicine(t, repo, "Aspirin", 5, "A")
	appendEntries(t, repo, id, 2)

	h := NewHistoryReader(repo, 20)
	require.NoError(t, h.Load(id))
	waitForEntries(t, h, 2)

	h.Cleanup()
	h.Cleanup()

	assert.Empty(t, h.MedicineID())
	assert.Empty(t, h.Entries())

	appendEntries(t, repo, id, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, h.Entries(), "no pushes after cleanup")
}
