package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apothekit/stockroom/pkg/types"
)

func TestPublishMedicinesFIFO(t *testing.T) {
	n := NewNotifier()
	ch := make(chan []types.Medicine, 16)
	sub := n.WatchMedicines(func(ms []types.Medicine) { ch <- ms })
	defer sub.Cancel()

	n.PublishMedicines([]types.Medicine{{Name: "A"}})
	n.PublishMedicines([]types.Medicine{{Name: "A"}, {Name: "B"}})
	n.PublishMedicines([]types.Medicine{{Name: "A"}, {Name: "B"}, {Name: "C"}})

	for want := 1; want <= 3; want++ {
		select {
		case got := <-ch:
			assert.Len(t, got, want, "payloads arrive in publish order")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for payload")
		}
	}
}

func TestCancelUnregisters(t *testing.T) {
	n := NewNotifier()
	ch := make(chan []types.Medicine, 16)
	sub := n.WatchMedicines(func(ms []types.Medicine) { ch <- ms })

	sub.Cancel()
	sub.Cancel() // idempotent

	n.PublishMedicines([]types.Medicine{{Name: "A"}})
	select {
	case <-ch:
		t.Fatal("canceled subscriber must not receive payloads")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishHistoryQueriesPerWatcher(t *testing.T) {
	n := NewNotifier()

	ch1 := make(chan []types.HistoryEntry, 16)
	ch5 := make(chan []types.HistoryEntry, 16)
	s1 := n.WatchHistory("m1", 1, func(es []types.HistoryEntry) { ch1 <- es })
	s5 := n.WatchHistory("m1", 5, func(es []types.HistoryEntry) { ch5 <- es })
	other := n.WatchHistory("m2", 5, func([]types.HistoryEntry) { t.Error("watcher for m2 must not fire") })
	defer s1.Cancel()
	defer s5.Cancel()
	defer other.Cancel()

	query := func(medicineID string, limit int) ([]types.HistoryEntry, error) {
		out := make([]types.HistoryEntry, limit)
		for i := range out {
			out[i] = types.HistoryEntry{MedicineID: medicineID}
		}
		return out, nil
	}
	n.PublishHistory("m1", query)

	select {
	case got := <-ch1:
		require.Len(t, got, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for limit-1 watcher")
	}
	select {
	case got := <-ch5:
		require.Len(t, got, 5)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for limit-5 watcher")
	}
	time.Sleep(50 * time.Millisecond)
}

func TestCancelAll(t *testing.T) {
	n := NewNotifier()
	ch := make(chan []types.Medicine, 16)
	n.WatchMedicines(func(ms []types.Medicine) { ch <- ms })
	n.WatchHistory("m1", 5, func([]types.HistoryEntry) {})

	n.CancelAll()

	n.PublishMedicines([]types.Medicine{{Name: "A"}})
	select {
	case <-ch:
		t.Fatal("subscriber must not receive payloads after CancelAll")
	case <-time.After(100 * time.Millisecond):
	}
}
