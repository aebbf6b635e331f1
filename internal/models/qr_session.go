package models

import (
	"slices"
	"time"
)

// QRSession is a time-bounded check-in window for one class on one day.
type QRSession struct {
	Meta
	ClassID         string    `json:"class_id"`
	Date            string    `json:"date"`
	SessionCode     string    `json:"session_code"`
	ExpiresAt       time.Time `json:"expires_at"`
	ScannedStudents []string  `json:"scanned_students"`
	IsActive        bool      `json:"is_active"`
}

// PastDeadline reports whether the wall-clock deadline has passed.
func (s QRSession) PastDeadline(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Open reports whether the session still accepts scans.
func (s QRSession) Open(now time.Time) bool {
	return s.IsActive && !s.PastDeadline(now)
}

// HasScanned reports whether the student already checked in.
func (s QRSession) HasScanned(studentID string) bool {
	return slices.Contains(s.ScannedStudents, studentID)
}

// Remaining returns the time left before the deadline, never negative.
func (s QRSession) Remaining(now time.Time) time.Duration {
	if left := s.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}
