package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/observability"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

// ErrInvalidStatus indicates an attendance status outside present/absent/late/leave.
var ErrInvalidStatus = errors.New("invalid attendance status")

// AttendanceService is the attendance ledger: one status per (class, student, date).
type AttendanceService interface {
	Set(ctx context.Context, classID, studentID, date string, status models.AttendanceStatus) (models.AttendanceRecord, error)
	BulkSet(ctx context.Context, classID, date string, entries []dto.AttendanceEntry) ([]models.AttendanceRecord, error)
	GetByClassDate(ctx context.Context, classID, date string) ([]models.AttendanceRecord, error)
	GetByStudentClass(ctx context.Context, studentID, classID string) ([]models.AttendanceRecord, error)
	GetDatesByClass(ctx context.Context, classID string) ([]string, error)
	CalculatePercentage(ctx context.Context, studentID, classID string) (models.AttendanceStats, error)
	ClassSummary(ctx context.Context, classID, date string) (dto.AttendanceDayResponse, error)
}

type attendanceService struct {
	repo   repository.AttendanceRepository
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// NewAttendanceService constructs the attendance ledger.
func NewAttendanceService(repo repository.AttendanceRepository, logger zerolog.Logger) AttendanceService {
	return &attendanceService{
		repo:   repo,
		logger: logger.With().Str("component", "attendance_service").Logger(),
		tracer: otel.Tracer("github.com/noah-isme/school-ledger-api/internal/service/attendance"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *attendanceService) Set(ctx context.Context, classID, studentID, date string, status models.AttendanceStatus) (models.AttendanceRecord, error) {
	records, err := s.BulkSet(ctx, classID, date, []dto.AttendanceEntry{{StudentID: studentID, Status: status}})
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	return records[0], nil
}

// BulkSet upserts every entry against one snapshot and commits it with a single write.
// Repeated student ids inside one batch resolve last-write-wins; the result holds one
// record per student, in first-seen order, carrying the stored status.
func (s *attendanceService) BulkSet(ctx context.Context, classID, date string, entries []dto.AttendanceEntry) ([]models.AttendanceRecord, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.set", trace.WithAttributes(
		attribute.String("attendance.class_id", classID),
		attribute.Int("attendance.entries", len(entries)),
	))
	defer span.End()

	day, err := normalizeDate(date)
	if err != nil {
		span.SetStatus(codes.Error, "invalid_date")
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Status.Valid() {
			span.SetStatus(codes.Error, "invalid_status")
			return nil, ErrInvalidStatus
		}
	}

	written := make([]models.AttendanceRecord, 0, len(entries))
	err = s.repo.Mutate(ctx, func(records []models.AttendanceRecord) ([]models.AttendanceRecord, bool, error) {
		now := s.now().UTC()
		written = written[:0]
		position := make(map[string]int, len(entries))
		for _, entry := range entries {
			var record models.AttendanceRecord
			records, record = s.upsert(records, classID, entry.StudentID, day, entry.Status, now)
			if i, seen := position[record.StudentID]; seen {
				written[i] = record
				continue
			}
			position[record.StudentID] = len(written)
			written = append(written, record)
		}
		return records, len(entries) > 0, nil
	})
	if err != nil {
		recordStorageFailure("attendance.set", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "attendance_write_failed")
		s.logger.Error().Err(err).Str("class_id", classID).Str("date", day).Int("entries", len(entries)).Msg("failed to persist attendance")
		return nil, err
	}

	mode := "single"
	if len(entries) > 1 {
		mode = "bulk"
	}
	observability.AttendanceWrites().WithLabelValues(mode).Inc()

	return written, nil
}

func (s *attendanceService) upsert(records []models.AttendanceRecord, classID, studentID, date string, status models.AttendanceStatus, now time.Time) ([]models.AttendanceRecord, models.AttendanceRecord) {
	for i := range records {
		if records[i].Matches(classID, studentID, date) {
			records[i].Status = status
			records[i].Touch(now)
			return records, records[i]
		}
	}

	record := models.AttendanceRecord{
		ClassID:   classID,
		StudentID: studentID,
		Date:      date,
		Status:    status,
	}
	record.Stamp(s.newID(), now)
	return append(records, record), record
}

func (s *attendanceService) GetByClassDate(ctx context.Context, classID, date string) ([]models.AttendanceRecord, error) {
	day, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, repository.AttendanceFilter{ClassID: stringPtr(classID), Date: stringPtr(day)})
}

func (s *attendanceService) GetByStudentClass(ctx context.Context, studentID, classID string) ([]models.AttendanceRecord, error) {
	return s.repo.List(ctx, repository.AttendanceFilter{ClassID: stringPtr(classID), StudentID: stringPtr(studentID)})
}

// GetDatesByClass returns the distinct days with records for the class, newest first.
func (s *attendanceService) GetDatesByClass(ctx context.Context, classID string) ([]string, error) {
	records, err := s.repo.List(ctx, repository.AttendanceFilter{ClassID: stringPtr(classID)})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	dates := make([]string, 0)
	for _, record := range records {
		if _, ok := seen[record.Date]; ok {
			continue
		}
		seen[record.Date] = struct{}{}
		dates = append(dates, record.Date)
	}

	sort.SliceStable(dates, func(i, j int) bool {
		left, leftErr := models.ParseDate(dates[i])
		right, rightErr := models.ParseDate(dates[j])
		if leftErr != nil || rightErr != nil {
			return dates[i] > dates[j]
		}
		return left.After(right)
	})

	return dates, nil
}

// CalculatePercentage counts present and late as attended over every record of the pair.
func (s *attendanceService) CalculatePercentage(ctx context.Context, studentID, classID string) (models.AttendanceStats, error) {
	records, err := s.GetByStudentClass(ctx, studentID, classID)
	if err != nil {
		return models.AttendanceStats{}, err
	}
	return attendanceStats(records), nil
}

func attendanceStats(records []models.AttendanceRecord) models.AttendanceStats {
	if len(records) == 0 {
		return models.AttendanceStats{}
	}

	present := 0
	for _, record := range records {
		if record.Status.Attended() {
			present++
		}
	}

	return models.AttendanceStats{
		Percentage: roundTenth(float64(present) / float64(len(records)) * 100),
		Present:    present,
		Total:      len(records),
	}
}

func (s *attendanceService) ClassSummary(ctx context.Context, classID, date string) (dto.AttendanceDayResponse, error) {
	records, err := s.GetByClassDate(ctx, classID, date)
	if err != nil {
		return dto.AttendanceDayResponse{}, err
	}

	counts := make(map[models.AttendanceStatus]int, len(models.AttendanceStatuses))
	for _, status := range models.AttendanceStatuses {
		counts[status] = 0
	}
	for _, record := range records {
		counts[record.Status]++
	}

	day, _ := normalizeDate(date)
	return dto.AttendanceDayResponse{
		ClassID: classID,
		Date:    day,
		Records: records,
		Counts:  counts,
	}, nil
}
