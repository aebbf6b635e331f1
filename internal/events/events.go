// Package events distributes check-in notifications.
package events

import (
	"context"
	"errors"
	"time"
)

// CheckInEvent is emitted after a scan has been recorded and attendance written.
type CheckInEvent struct {
	SessionID     string    `json:"session_id"`
	ClassID       string    `json:"class_id"`
	Date          string    `json:"date"`
	StudentID     string    `json:"student_id"`
	StudentNumber string    `json:"student_number"`
	StudentName   string    `json:"student_name"`
	ScannedCount  int       `json:"scanned_count"`
	At            time.Time `json:"at"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Publisher delivers check-in events.
type Publisher interface {
	Publish(ctx context.Context, event CheckInEvent) error
}

// Multi fans an event out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event CheckInEvent) error {
	var errs []error
	for _, publisher := range m {
		if publisher == nil {
			continue
		}
		if err := publisher.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
