// This file implements the append-only history collection: audit writes,
// the bounded newest-first read, and the per-medicine watch fan-out.
package sqlite

import (
	"fmt"
	"time"

	"github.com/apothekit/stockroom/pkg/types"
)

// AppendHistory persists an audit entry. A UUID v7 is generated and the
// timestamp set to now if zero. Returns the assigned ID. History is
// append-only; there is no update or delete.
func (b *Backend) AppendHistory(e *types.HistoryEntry) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.release()

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

	_, err := b.db.Exec(
		"INSERT INTO history (history_id, medicine_id, user, action, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		e.ID, e.MedicineID, e.User, e.Action, e.Details, formatTime(e.Timestamp),
	)
	if err != nil {
		return "", fmt.Errorf("appending history: %w", err)
	}

	b.notifyHistoryLocked(e.MedicineID)
	return e.ID, nil
}

// ListHistory returns the most recent entries for a medicine, newest first,
// at most limit records.
func (b *Backend) ListHistory(medicineID string, limit int) ([]types.HistoryEntry, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	return b.listHistoryLocked(medicineID, limit)
}

// WatchHistory registers fn to receive the most recent limit entries for
// the given medicine, newest first, after every history append touching it.
func (b *Backend) WatchHistory(medicineID string, limit int, fn func([]types.HistoryEntry)) (types.Subscription, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	if medicineID == "" {
		return nil, types.ErrInvalidID
	}
	return b.watch.WatchHistory(medicineID, limit, fn), nil
}

// notifyHistoryLocked queries each active watcher's window and fans it out.
// The caller holds the backend read lock; delivery itself is asynchronous.
func (b *Backend) notifyHistoryLocked(medicineID string) {
	b.watch.PublishHistory(medicineID, b.listHistoryLocked)
}

// listHistoryLocked is ListHistory without lock management.
// The caller holds the backend read lock.
func (b *Backend) listHistoryLocked(medicineID string, limit int) ([]types.HistoryEntry, error) {
	if medicineID == "" {
		return nil, types.ErrInvalidID
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := b.db.Query(
		"SELECT history_id, medicine_id, user, action, details, timestamp FROM history WHERE medicine_id = ? ORDER BY timestamp DESC, history_id DESC LIMIT ?",
		medicineID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing history for %s: %w", medicineID, err)
	}
	defer rows.Close()

	var out []types.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// scanHistoryEntry hydrates one row into a HistoryEntry.
func scanHistoryEntry(s scanner) (*types.HistoryEntry, error) {
	var e types.HistoryEntry
	var timestamp string
	if err := s.Scan(&e.ID, &e.MedicineID, &e.User, &e.Action, &e.Details, &timestamp); err != nil {
		return nil, err
	}
	var err error
	if e.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, fmt.Errorf("parsing timestamp: %w", err)
	}
	return &e, nil
}
