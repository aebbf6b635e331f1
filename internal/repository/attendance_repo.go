package repository

import (
	"context"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// AttendanceFilter allows narrowing attendance queries.
type AttendanceFilter struct {
	ClassID   *string
	StudentID *string
	Date      *string
}

func (f AttendanceFilter) match(record models.AttendanceRecord) bool {
	if f.ClassID != nil && record.ClassID != *f.ClassID {
		return false
	}
	if f.StudentID != nil && record.StudentID != *f.StudentID {
		return false
	}
	if f.Date != nil && record.Date != *f.Date {
		return false
	}
	return true
}

// AttendanceRepository defines data operations for the attendance ledger.
type AttendanceRepository interface {
	List(ctx context.Context, filter AttendanceFilter) ([]models.AttendanceRecord, error)
	Mutate(ctx context.Context, fn store.MutateFunc[models.AttendanceRecord]) error
}

type attendanceRepository struct {
	records *store.Collection[models.AttendanceRecord]
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(s store.Store) AttendanceRepository {
	return &attendanceRepository{records: store.NewCollection[models.AttendanceRecord](s, store.CollectionAttendance)}
}

func (r *attendanceRepository) List(ctx context.Context, filter AttendanceFilter) ([]models.AttendanceRecord, error) {
	all, err := r.records.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, filter.match), nil
}

func (r *attendanceRepository) Mutate(ctx context.Context, fn store.MutateFunc[models.AttendanceRecord]) error {
	return r.records.Mutate(ctx, fn)
}
