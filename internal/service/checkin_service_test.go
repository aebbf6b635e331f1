package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/events"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/observability"
)

type checkInHarness struct {
	fixture    ledgerFixture
	clock      *manualClock
	sessions   QRSessionService
	attendance AttendanceService
	broker     *events.Broker
	svc        CheckInService
}

func newCheckInHarness(t *testing.T, publisher events.Publisher) checkInHarness {
	t.Helper()
	fixture := newLedgerFixture(t, 0)
	fixture.seedRoster(t)
	clock := newManualClock()
	broker := events.NewBroker()

	sessions := NewQRSessionService(fixture.sessions, "https://ledger.example.com", testLogger(), WithSessionClock(clock.Now))
	attendance := NewAttendanceService(fixture.attendance, testLogger())
	if publisher == nil {
		publisher = broker
	} else {
		publisher = events.Multi{broker, publisher}
	}
	svc := NewCheckInService(sessions, attendance, fixture.roster, publisher, testLogger())
	svc.(*checkInService).now = clock.Now

	return checkInHarness{
		fixture:    fixture,
		clock:      clock,
		sessions:   sessions,
		attendance: attendance,
		broker:     broker,
		svc:        svc,
	}
}

func TestCheckInRecordsScanAndAttendance(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := context.Background()

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(10*time.Minute))
	require.NoError(t, err)
	feed, cancel := h.broker.Subscribe(session.ID)
	defer cancel()

	response, err := h.svc.CheckIn(ctx, session.SessionCode, " 1002 ")
	require.NoError(t, err)
	require.Equal(t, "s2", response.StudentID)
	require.Equal(t, 1, response.ScannedCount)
	require.Equal(t, models.AttendanceStatusPresent, response.Status)

	records, err := h.attendance.GetByClassDate(ctx, "c1", "2024-03-04")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "s2", records[0].StudentID)
	require.Equal(t, models.AttendanceStatusPresent, records[0].Status)

	select {
	case event := <-feed:
		require.Equal(t, "Budi", event.StudentName)
		require.Equal(t, 1, event.ScannedCount)
	case <-time.After(time.Second):
		t.Fatal("expected a check-in event")
	}

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1002")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInOverwritesEarlierAbsence(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := context.Background()

	_, err := h.attendance.Set(ctx, "c1", "s1", "2024-03-04", models.AttendanceStatusAbsent)
	require.NoError(t, err)
	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1001")
	require.NoError(t, err)

	records, err := h.attendance.GetByStudentClass(ctx, "s1", "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, models.AttendanceStatusPresent, records[0].Status)
}

func TestCheckInRejections(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := context.Background()

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = h.svc.CheckIn(ctx, "ZZZZZZ", "1001")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1003")
	require.ErrorIs(t, err, ErrStudentNotEnrolled)

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "9999")
	require.ErrorIs(t, err, ErrStudentNotEnrolled)

	h.clock.Advance(2 * time.Minute)
	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1001")
	require.ErrorIs(t, err, ErrSessionExpired)

	stored, err := h.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1001")
	require.ErrorIs(t, err, ErrSessionExpired)

	records, err := h.attendance.GetByClassDate(ctx, "c1", "2024-03-04")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestCheckInPastDeadlineWithUnknownNumber(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := context.Background()

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(time.Minute))
	require.NoError(t, err)

	h.clock.Advance(2 * time.Minute)
	_, err = h.svc.CheckIn(ctx, session.SessionCode, "9999")
	require.ErrorIs(t, err, ErrSessionExpired)

	stored, err := h.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)
	require.Empty(t, stored.ScannedStudents)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.CheckInEvent) error {
	return errors.New("nats unavailable")
}

func TestCheckInSurvivesPublisherFailure(t *testing.T) {
	h := newCheckInHarness(t, failingPublisher{})
	ctx := context.Background()

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1001")
	require.NoError(t, err)
}

func TestCheckInEventCarriesCorrelationID(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := observability.WithCorrelationID(context.Background(), "req-42")

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(10*time.Minute))
	require.NoError(t, err)
	feed, cancel := h.broker.Subscribe(session.ID)
	defer cancel()

	_, err = h.svc.CheckIn(ctx, session.SessionCode, "1001")
	require.NoError(t, err)

	select {
	case event := <-feed:
		require.Equal(t, "req-42", event.CorrelationID)
	case <-time.After(time.Second):
		t.Fatal("expected check-in event")
	}
}

func TestCheckInLookup(t *testing.T) {
	h := newCheckInHarness(t, nil)
	ctx := context.Background()

	session, err := h.sessions.Create(ctx, "c1", "2024-03-04", h.clock.Now().Add(time.Minute))
	require.NoError(t, err)

	lookup, err := h.svc.Lookup(ctx, session.SessionCode)
	require.NoError(t, err)
	require.Equal(t, "MTH101", lookup.ClassCode)
	require.Equal(t, "Mathematics", lookup.ClassName)
	require.True(t, lookup.Open)

	h.clock.Advance(time.Hour)
	lookup, err = h.svc.Lookup(ctx, session.SessionCode)
	require.NoError(t, err)
	require.False(t, lookup.Open)
}
