package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/events"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/observability"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

// ErrStudentNotEnrolled indicates a student number not found in the session's class.
var ErrStudentNotEnrolled = errors.New("student is not enrolled in this class")

// CheckInService drives the student-facing scan page.
type CheckInService interface {
	Lookup(ctx context.Context, code string) (dto.ScanLookupResponse, error)
	CheckIn(ctx context.Context, code, studentNumber string) (dto.CheckInResponse, error)
}

type checkInService struct {
	sessions   QRSessionService
	attendance AttendanceService
	roster     repository.RosterRepository
	publisher  events.Publisher
	logger     zerolog.Logger
	now        func() time.Time
}

// NewCheckInService wires the scan flow. publisher may be nil.
func NewCheckInService(sessions QRSessionService, attendance AttendanceService, roster repository.RosterRepository, publisher events.Publisher, logger zerolog.Logger) CheckInService {
	return &checkInService{
		sessions:   sessions,
		attendance: attendance,
		roster:     roster,
		publisher:  publisher,
		logger:     logger.With().Str("component", "checkin_service").Logger(),
		now:        time.Now,
	}
}

func (s *checkInService) Lookup(ctx context.Context, code string) (dto.ScanLookupResponse, error) {
	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		return dto.ScanLookupResponse{}, err
	}

	response := dto.ScanLookupResponse{
		SessionCode: session.SessionCode,
		ClassID:     session.ClassID,
		Date:        session.Date,
		ExpiresAt:   session.ExpiresAt,
		Open:        session.Open(s.now().UTC()),
	}
	class, ok, err := s.roster.GetClass(ctx, session.ClassID)
	if err != nil {
		return dto.ScanLookupResponse{}, err
	}
	if ok {
		response.ClassCode = class.Code
		response.ClassName = class.Name
	}
	return response, nil
}

// CheckIn records the scan and then writes the matching present attendance record.
func (s *checkInService) CheckIn(ctx context.Context, code, studentNumber string) (dto.CheckInResponse, error) {
	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		s.count(err)
		return dto.CheckInResponse{}, err
	}
	if !session.IsActive {
		s.count(ErrSessionExpired)
		return dto.CheckInResponse{}, ErrSessionExpired
	}
	// Expiry is checked before the roster lookup and persisted on this access.
	if session.PastDeadline(s.now().UTC()) {
		if _, err := s.sessions.Deactivate(ctx, session.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to persist session expiry")
		}
		s.count(ErrSessionExpired)
		return dto.CheckInResponse{}, ErrSessionExpired
	}

	student, ok, err := s.roster.FindStudentByNumber(ctx, session.ClassID, studentNumber)
	if err != nil {
		s.count(err)
		return dto.CheckInResponse{}, err
	}
	if !ok {
		s.count(ErrStudentNotEnrolled)
		return dto.CheckInResponse{}, ErrStudentNotEnrolled
	}

	updated, err := s.sessions.RecordScan(ctx, session.ID, student.ID)
	if err != nil {
		s.count(err)
		return dto.CheckInResponse{}, err
	}

	if _, err := s.attendance.Set(ctx, updated.ClassID, student.ID, updated.Date, models.AttendanceStatusPresent); err != nil {
		s.count(err)
		s.logger.Error().
			Err(err).
			Str("session_id", updated.ID).
			Str("student_id", student.ID).
			Msg("scan recorded but attendance write failed")
		return dto.CheckInResponse{}, err
	}
	s.count(nil)

	event := events.CheckInEvent{
		SessionID:     updated.ID,
		ClassID:       updated.ClassID,
		Date:          updated.Date,
		StudentID:     student.ID,
		StudentNumber: student.StudentNumber,
		StudentName:   student.Name,
		ScannedCount:  len(updated.ScannedStudents),
		At:            s.now().UTC(),
		CorrelationID: observability.CorrelationID(ctx),
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("session_id", updated.ID).Msg("failed to publish check-in event")
		}
	}

	s.logger.Info().
		Str("session_id", updated.ID).
		Str("student_id", student.ID).
		Int("scanned", event.ScannedCount).
		Msg("student checked in")

	return dto.CheckInResponse{
		SessionID:     updated.ID,
		ClassID:       updated.ClassID,
		Date:          updated.Date,
		StudentID:     student.ID,
		StudentNumber: student.StudentNumber,
		StudentName:   student.Name,
		Status:        models.AttendanceStatusPresent,
		ScannedCount:  event.ScannedCount,
	}, nil
}

func (s *checkInService) count(err error) {
	outcome := "error"
	switch {
	case err == nil:
		outcome = "success"
	case errors.Is(err, ErrAlreadyCheckedIn):
		outcome = "duplicate"
	case errors.Is(err, ErrSessionExpired):
		outcome = "expired"
	case errors.Is(err, ErrSessionNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrStudentNotEnrolled):
		outcome = "not_enrolled"
	}
	observability.CheckIns().WithLabelValues(outcome).Inc()
}
