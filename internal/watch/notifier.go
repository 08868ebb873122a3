// Package watch implements the live-subscription fan-out shared by the
// storage backends. It stands in for the server-push channel of a hosted
// document store: after every mutation the owning backend publishes the
// fresh result set and the notifier delivers it to each subscriber.
package watch

import (
	"sync"

	"github.com/apothekit/stockroom/pkg/types"
)

// Notifier fans mutations out to watch subscribers. Each subscriber owns a
// pump goroutine draining a FIFO queue, so a slow callback never blocks the
// publisher or other subscribers, and one subscriber's callbacks never
// overlap.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	meds   map[int]*pump[[]types.Medicine]
	hist   map[int]*histWatch
}

// histWatch pairs a history pump with the medicine window it follows.
type histWatch struct {
	medicineID string
	limit      int
	pump       *pump[[]types.HistoryEntry]
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		meds: make(map[int]*pump[[]types.Medicine]),
		hist: make(map[int]*histWatch),
	}
}

// WatchMedicines registers fn and returns its subscription handle.
func (n *Notifier) WatchMedicines(fn func([]types.Medicine)) types.Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	p := newPump(fn, func() { n.remove(id) })
	n.meds[id] = p
	return p
}

// WatchHistory registers fn for the given medicine and returns its handle.
func (n *Notifier) WatchHistory(medicineID string, limit int, fn func([]types.HistoryEntry)) types.Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	p := newPump(fn, func() { n.remove(id) })
	n.hist[id] = &histWatch{medicineID: medicineID, limit: limit, pump: p}
	return p
}

// remove drops a subscriber from the registry after it cancels.
func (n *Notifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.meds, id)
	delete(n.hist, id)
}

// PublishMedicines queues the full medicine set on every medicine watcher.
// The slice must not be mutated by the caller afterwards.
func (n *Notifier) PublishMedicines(medicines []types.Medicine) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, p := range n.meds {
		p.publish(medicines)
	}
}

// PublishHistory evaluates query once per watcher of medicineID and queues
// the result. query runs synchronously on the publisher's goroutine;
// delivery is asynchronous.
func (n *Notifier) PublishHistory(medicineID string, query func(medicineID string, limit int) ([]types.HistoryEntry, error)) {
	n.mu.Lock()
	watchers := make([]*histWatch, 0, len(n.hist))
	for _, w := range n.hist {
		if w.medicineID == medicineID {
			watchers = append(watchers, w)
		}
	}
	n.mu.Unlock()

	for _, w := range watchers {
		entries, err := query(w.medicineID, w.limit)
		if err != nil {
			continue
		}
		w.pump.publish(entries)
	}
}

// CancelAll cancels every subscriber. Used by backend Detach.
func (n *Notifier) CancelAll() {
	n.mu.Lock()
	meds := make([]*pump[[]types.Medicine], 0, len(n.meds))
	for _, p := range n.meds {
		meds = append(meds, p)
	}
	hist := make([]*histWatch, 0, len(n.hist))
	for _, w := range n.hist {
		hist = append(hist, w)
	}
	n.mu.Unlock()

	for _, p := range meds {
		p.Cancel()
	}
	for _, w := range hist {
		w.pump.Cancel()
	}
}

// pump delivers queued payloads to a single callback in FIFO order on its
// own goroutine. Cancel is idempotent; payloads queued after Cancel are
// dropped.
type pump[T any] struct {
	fn       func(T)
	onCancel func()

	mu       sync.Mutex
	queue    []T
	canceled bool

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newPump[T any](fn func(T), onCancel func()) *pump[T] {
	p := &pump[T]{
		fn:       fn,
		onCancel: onCancel,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// publish appends a payload and wakes the pump goroutine.
func (p *pump[T]) publish(payload T) {
	p.mu.Lock()
	if p.canceled {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, payload)
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Cancel stops delivery and unregisters the subscriber. Idempotent.
func (p *pump[T]) Cancel() {
	p.once.Do(func() {
		p.mu.Lock()
		p.canceled = true
		p.queue = nil
		p.mu.Unlock()
		close(p.done)
		if p.onCancel != nil {
			p.onCancel()
		}
	})
}

func (p *pump[T]) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.wake:
		}
		for {
			p.mu.Lock()
			if p.canceled || len(p.queue) == 0 {
				p.mu.Unlock()
				break
			}
			payload := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			p.fn(payload)
		}
	}
}
