package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/observability"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

var (
	// ErrSessionNotFound indicates no session with the given id or code.
	ErrSessionNotFound = errors.New("qr session not found")
	// ErrSessionExpired indicates a closed session or one past its deadline.
	ErrSessionExpired = errors.New("qr session expired")
	// ErrAlreadyCheckedIn indicates the student is already in the scan set.
	ErrAlreadyCheckedIn = errors.New("student already checked in")
	// ErrInvalidExpiry indicates a deadline that is not in the future.
	ErrInvalidExpiry = errors.New("session expiry must be in the future")
)

const (
	sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sessionCodeLength   = 6
	sessionCodeAttempts = 8
)

// QRSessionService runs time-bounded check-in windows.
type QRSessionService interface {
	Create(ctx context.Context, classID, date string, expiresAt time.Time) (models.QRSession, error)
	RecordScan(ctx context.Context, sessionID, studentID string) (models.QRSession, error)
	GetByCode(ctx context.Context, code string) (models.QRSession, error)
	Get(ctx context.Context, id string) (models.QRSession, error)
	Deactivate(ctx context.Context, id string) (models.QRSession, error)
	ActiveByClass(ctx context.Context, classID string) ([]models.QRSession, error)
	ListOpen(ctx context.Context) ([]models.QRSession, error)
	ScanURL(code string) string
}

// QRSessionOption customises the session engine.
type QRSessionOption func(*qrSessionService)

// WithSessionClock overrides the wall clock used for deadlines.
func WithSessionClock(now func() time.Time) QRSessionOption {
	return func(s *qrSessionService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionCodeGenerator overrides how session codes are minted.
func WithSessionCodeGenerator(generate func() (string, error)) QRSessionOption {
	return func(s *qrSessionService) {
		if generate != nil {
			s.newCode = generate
		}
	}
}

type qrSessionService struct {
	repo        repository.QRSessionRepository
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
	newID       func() string
	newCode     func() (string, error)
	scanBaseURL string
}

// NewQRSessionService constructs the session engine. scanBaseURL is the public page
// that students open from the QR image.
func NewQRSessionService(repo repository.QRSessionRepository, scanBaseURL string, logger zerolog.Logger, opts ...QRSessionOption) QRSessionService {
	svc := &qrSessionService{
		repo:        repo,
		logger:      logger.With().Str("component", "qr_session_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/school-ledger-api/internal/service/qr_session"),
		now:         time.Now,
		newID:       uuid.NewString,
		newCode:     generateSessionCode,
		scanBaseURL: strings.TrimRight(scanBaseURL, "/"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *qrSessionService) Create(ctx context.Context, classID, date string, expiresAt time.Time) (models.QRSession, error) {
	ctx, span := s.tracer.Start(ctx, "qr_session.create", trace.WithAttributes(attribute.String("qr.class_id", classID)))
	defer span.End()

	day, err := normalizeDate(date)
	if err != nil {
		return models.QRSession{}, err
	}

	var created models.QRSession
	err = s.repo.Mutate(ctx, func(sessions []models.QRSession) ([]models.QRSession, bool, error) {
		now := s.now().UTC()
		if !expiresAt.After(now) {
			return sessions, false, ErrInvalidExpiry
		}

		code, err := s.uniqueCode(sessions, now)
		if err != nil {
			return sessions, false, err
		}

		created = models.QRSession{
			ClassID:         classID,
			Date:            day,
			SessionCode:     code,
			ExpiresAt:       expiresAt.UTC(),
			ScannedStudents: []string{},
			IsActive:        true,
		}
		created.Stamp(s.newID(), now)
		return append(sessions, created), true, nil
	})
	if err != nil {
		recordStorageFailure("qr_session.create", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "create_failed")
		return models.QRSession{}, err
	}

	s.logger.Info().
		Str("session_id", created.ID).
		Str("class_id", classID).
		Str("date", day).
		Time("expires_at", created.ExpiresAt).
		Msg("qr session opened")
	return created, nil
}

// uniqueCode retries a few times so a fresh code does not shadow an open session.
func (s *qrSessionService) uniqueCode(sessions []models.QRSession, now time.Time) (string, error) {
	var code string
	for attempt := 0; attempt < sessionCodeAttempts; attempt++ {
		var err error
		code, err = s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate session code: %w", err)
		}
		clash := false
		for _, session := range sessions {
			if session.SessionCode == code && session.Open(now) {
				clash = true
				break
			}
		}
		if !clash {
			return code, nil
		}
	}
	s.logger.Warn().Str("session_code", code).Msg("session code still collides after retries")
	return code, nil
}

func (s *qrSessionService) RecordScan(ctx context.Context, sessionID, studentID string) (models.QRSession, error) {
	ctx, span := s.tracer.Start(ctx, "qr_session.record_scan", trace.WithAttributes(
		attribute.String("qr.session_id", sessionID),
		attribute.String("qr.student_id", studentID),
	))
	defer span.End()

	var updated models.QRSession
	err := s.repo.Mutate(ctx, func(sessions []models.QRSession) ([]models.QRSession, bool, error) {
		index := indexOfSession(sessions, sessionID)
		if index < 0 {
			return sessions, false, ErrSessionNotFound
		}

		now := s.now().UTC()
		session := &sessions[index]
		if !session.IsActive {
			return sessions, false, ErrSessionExpired
		}
		if session.PastDeadline(now) {
			session.IsActive = false
			session.Touch(now)
			updated = *session
			return sessions, true, ErrSessionExpired
		}
		if session.HasScanned(studentID) {
			updated = *session
			return sessions, false, ErrAlreadyCheckedIn
		}

		session.ScannedStudents = append(session.ScannedStudents, studentID)
		session.Touch(now)
		updated = *session
		return sessions, true, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSessionExpired):
			span.SetStatus(codes.Error, "expired")
		case errors.Is(err, ErrAlreadyCheckedIn):
			span.SetStatus(codes.Error, "duplicate")
		case errors.Is(err, ErrSessionNotFound):
			span.SetStatus(codes.Error, "not_found")
		default:
			recordStorageFailure("qr_session.record_scan", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "record_scan_failed")
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to persist scan")
		}
		return models.QRSession{}, err
	}

	return updated, nil
}

// GetByCode prefers an open session with the code, then the most recently created one.
func (s *qrSessionService) GetByCode(ctx context.Context, code string) (models.QRSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return models.QRSession{}, err
	}

	now := s.now().UTC()
	var (
		match models.QRSession
		found bool
	)
	for _, session := range sessions {
		if session.SessionCode != code {
			continue
		}
		if session.Open(now) {
			return session, nil
		}
		if !found || session.CreatedAt.After(match.CreatedAt) {
			match, found = session, true
		}
	}
	if !found {
		return models.QRSession{}, ErrSessionNotFound
	}
	return match, nil
}

func (s *qrSessionService) Get(ctx context.Context, id string) (models.QRSession, error) {
	session, ok, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.QRSession{}, err
	}
	if !ok {
		return models.QRSession{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *qrSessionService) Deactivate(ctx context.Context, id string) (models.QRSession, error) {
	var closed models.QRSession
	err := s.repo.Mutate(ctx, func(sessions []models.QRSession) ([]models.QRSession, bool, error) {
		index := indexOfSession(sessions, id)
		if index < 0 {
			return sessions, false, ErrSessionNotFound
		}
		if !sessions[index].IsActive {
			closed = sessions[index]
			return sessions, false, nil
		}
		sessions[index].IsActive = false
		sessions[index].Touch(s.now().UTC())
		closed = sessions[index]
		return sessions, true, nil
	})
	if err != nil {
		recordStorageFailure("qr_session.deactivate", err)
		return models.QRSession{}, err
	}

	s.logger.Info().Str("session_id", id).Int("scanned", len(closed.ScannedStudents)).Msg("qr session closed")
	return closed, nil
}

func (s *qrSessionService) ActiveByClass(ctx context.Context, classID string) ([]models.QRSession, error) {
	open, err := s.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.QRSession, 0, len(open))
	for _, session := range open {
		if session.ClassID == classID {
			result = append(result, session)
		}
	}
	return result, nil
}

// ListOpen returns sessions that still accept scans, newest first.
func (s *qrSessionService) ListOpen(ctx context.Context) ([]models.QRSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	open := make([]models.QRSession, 0)
	for _, session := range sessions {
		if session.Open(now) {
			open = append(open, session)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].CreatedAt.After(open[j].CreatedAt)
	})

	observability.OpenSessions().Set(float64(len(open)))
	return open, nil
}

func (s *qrSessionService) ScanURL(code string) string {
	return s.scanBaseURL + "#/scan?code=" + url.QueryEscape(code)
}

func indexOfSession(sessions []models.QRSession, id string) int {
	for i := range sessions {
		if sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func generateSessionCode() (string, error) {
	limit := big.NewInt(int64(len(sessionCodeAlphabet)))
	var builder strings.Builder
	builder.Grow(sessionCodeLength)
	for i := 0; i < sessionCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteByte(sessionCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}
