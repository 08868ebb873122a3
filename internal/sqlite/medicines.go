// This file implements the medicines collection for the SQLite backend:
// CRUD, the atomic stock adjustment, bounded search, and the watch fan-out
// that follows every mutation.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/apothekit/stockroom/pkg/types"
)

// PutMedicine creates or updates a medicine. When m.ID is empty a UUID v7 is
// generated and timestamps are set; otherwise the named record is updated.
// Returns the actual ID used.
func (b *Backend) PutMedicine(m *types.Medicine) (string, error) {
	if err := b.acquire(); err != nil {
		return "", err
	}
	defer b.release()

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
		m.UpdatedAt = now
		_, err := b.db.Exec(
			"INSERT INTO medicines (medicine_id, name, stock, aisle, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			m.ID, m.Name, m.Stock, m.Aisle, formatTime(now), formatTime(now),
		)
		if err != nil {
			return "", fmt.Errorf("inserting medicine: %w", err)
		}
	} else {
		m.UpdatedAt = now
		res, err := b.db.Exec(
			"UPDATE medicines SET name = ?, stock = ?, aisle = ?, updated_at = ? WHERE medicine_id = ?",
			m.Name, m.Stock, m.Aisle, formatTime(now), m.ID,
		)
		if err != nil {
			return "", fmt.Errorf("updating medicine %s: %w", m.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return "", err
		}
		if affected == 0 {
			return "", types.ErrNotFound
		}
	}

	b.notifyMedicinesLocked()
	return m.ID, nil
}

// GetMedicine retrieves a medicine by ID.
// Returns ErrNotFound if no record exists with that ID.
func (b *Backend) GetMedicine(id string) (*types.Medicine, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRow(
		"SELECT medicine_id, name, stock, aisle, created_at, updated_at FROM medicines WHERE medicine_id = ?",
		id,
	)
	m, err := scanMedicine(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting medicine %s: %w", id, err)
	}
	return m, nil
}

// DeleteMedicine removes the medicine with the given ID.
// Returns ErrNotFound if no record exists with that ID.
func (b *Backend) DeleteMedicine(id string) error {
	if err := b.acquire(); err != nil {
		return err
	}
	defer b.release()

	if id == "" {
		return types.ErrInvalidID
	}

	res, err := b.db.Exec("DELETE FROM medicines WHERE medicine_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting medicine %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return types.ErrNotFound
	}

	b.notifyMedicinesLocked()
	return nil
}

// ListMedicines returns every medicine ordered by name ascending.
func (b *Backend) ListMedicines() ([]types.Medicine, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	return b.listMedicinesLocked()
}

// AdjustStock applies delta to the stored stock atomically, clamping the
// result at zero. The read-compute-write runs inside one transaction, so
// two concurrent adjustments cannot lose an update.
// Returns ErrNotFound if the ID is unknown.
func (b *Backend) AdjustStock(id string, delta int) (before, after int, err error) {
	if err := b.acquire(); err != nil {
		return 0, 0, err
	}
	defer b.release()

	if id == "" {
		return 0, 0, types.ErrInvalidID
	}

	tx, err := b.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow("SELECT stock FROM medicines WHERE medicine_id = ?", id).Scan(&before)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, types.ErrNotFound
		}
		return 0, 0, fmt.Errorf("reading stock for %s: %w", id, err)
	}

	after = types.ClampStock(before + delta)
	_, err = tx.Exec(
		"UPDATE medicines SET stock = ?, updated_at = ? WHERE medicine_id = ?",
		after, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("adjusting stock for %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing stock adjustment: %w", err)
	}

	b.notifyMedicinesLocked()
	return before, after, nil
}

// SearchMedicines returns medicines whose name contains query, ordered by
// name, at most limit records. Matching is case-insensitive for ASCII.
func (b *Backend) SearchMedicines(query string, limit int) ([]types.Medicine, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	if limit <= 0 {
		return nil, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := b.db.Query(
		"SELECT medicine_id, name, stock, aisle, created_at, updated_at FROM medicines WHERE name LIKE ? ESCAPE '\\' ORDER BY name, medicine_id LIMIT ?",
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching medicines: %w", err)
	}
	defer rows.Close()

	return collectMedicines(rows)
}

// WatchMedicines registers fn to receive the full name-ordered medicine set
// after every medicine mutation.
func (b *Backend) WatchMedicines(fn func([]types.Medicine)) (types.Subscription, error) {
	if err := b.acquire(); err != nil {
		return nil, err
	}
	defer b.release()

	return b.watch.WatchMedicines(fn), nil
}

// notifyMedicinesLocked queries the current set and fans it out. The caller
// holds the backend read lock; delivery itself is asynchronous.
func (b *Backend) notifyMedicinesLocked() {
	medicines, err := b.listMedicinesLocked()
	if err != nil {
		return
	}
	b.watch.PublishMedicines(medicines)
}

// listMedicinesLocked is ListMedicines without lock management.
// The caller holds the backend read lock.
func (b *Backend) listMedicinesLocked() ([]types.Medicine, error) {
	rows, err := b.db.Query(
		"SELECT medicine_id, name, stock, aisle, created_at, updated_at FROM medicines ORDER BY name, medicine_id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing medicines: %w", err)
	}
	defer rows.Close()

	return collectMedicines(rows)
}

// scanner abstracts sql.Row and sql.Rows for row hydration.
type scanner interface {
	Scan(dest ...any) error
}

// scanMedicine hydrates one row into a Medicine.
func scanMedicine(s scanner) (*types.Medicine, error) {
	var m types.Medicine
	var createdAt, updatedAt string
	if err := s.Scan(&m.ID, &m.Name, &m.Stock, &m.Aisle, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &m, nil
}

// collectMedicines drains rows into a slice.
func collectMedicines(rows *sql.Rows) ([]types.Medicine, error) {
	var out []types.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards in a user-supplied query.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// formatTime and parseTime fix the timestamp text representation.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
