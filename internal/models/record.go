package models

import "time"

// Meta carries the identity and timestamps assigned by the record store.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the record identifier.
func (m Meta) Key() string {
	return m.ID
}

// Stamp assigns a fresh identity to a record that is about to be created.
func (m *Meta) Stamp(id string, now time.Time) {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch refreshes the update timestamp.
func (m *Meta) Touch(now time.Time) {
	m.UpdatedAt = now
}
