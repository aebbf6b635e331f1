// Package store persists record collections as whole JSON documents.
package store

import (
	"context"
	"errors"
)

// ErrStorage marks a failed read or write against the underlying persistence.
var ErrStorage = errors.New("storage failure")

// Collection names shared by every backend.
const (
	CollectionClasses    = "classes"
	CollectionStudents   = "students"
	CollectionAttendance = "attendance"
	CollectionScoreUnits = "score_units"
	CollectionScores     = "scores"
	CollectionQRSessions = "qr_sessions"
	CollectionSettings   = "settings"
)

// Collections lists every collection name in export order.
var Collections = []string{
	CollectionClasses,
	CollectionStudents,
	CollectionAttendance,
	CollectionScoreUnits,
	CollectionScores,
	CollectionQRSessions,
	CollectionSettings,
}

// Store reads and replaces named collection documents.
type Store interface {
	// Load returns the stored document, or nil when the collection was never written.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save replaces the whole document for the collection.
	Save(ctx context.Context, name string, doc []byte) error
}

// Probe performs a cheap read to confirm the backend answers.
func Probe(ctx context.Context, s Store) error {
	_, err := s.Load(ctx, CollectionSettings)
	return err
}
