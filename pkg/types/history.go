package types

import "time"

// HistoryEntry is an immutable audit record describing a single mutation to
// a medicine. Entries are append-only: the application never updates or
// deletes them.
type HistoryEntry struct {
	ID         string    // UUID v7, assigned by the store on creation.
	MedicineID string    // Weak reference to the mutated medicine.
	User       string    // Identifier of the actor (email or uid).
	Action     string    // Short verb phrase, e.g. "Added Aspirin".
	Details    string    // Free-form description of the change.
	Timestamp  time.Time // Creation time, assigned at write.
}

// Validate checks the fields a caller controls before persisting.
func (e *HistoryEntry) Validate() error {
	if e.MedicineID == "" {
		return ErrInvalidID
	}
	if e.Action == "" {
		return ErrInvalidData
	}
	return nil
}
