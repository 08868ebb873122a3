package types

import "time"

// Medicine represents a single inventory record. A medicine belongs to
// exactly one aisle; Stock never drops below zero.
type Medicine struct {
	ID        string    // UUID v7, assigned by the store on creation.
	Name      string    // Human-readable name (required, non-empty).
	Stock     int       // Units on hand, clamped to [0, inf).
	Aisle     string    // Storage-location label.
	CreatedAt time.Time // Timestamp of creation.
	UpdatedAt time.Time // Timestamp of last modification.
}

// Validate checks the fields a caller controls before persisting.
// Returns ErrInvalidName for an empty name and ErrNegativeStock for a
// negative stock value.
func (m *Medicine) Validate() error {
	if m.Name == "" {
		return ErrInvalidName
	}
	if m.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// ClampStock returns stock bounded below at zero. Every write path routes
// stock values through this so a negative count is never persisted.
func ClampStock(stock int) int {
	if stock < 0 {
		return 0
	}
	return stock
}
