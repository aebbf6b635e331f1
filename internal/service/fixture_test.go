package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type ledgerFixture struct {
	store      *store.MemoryStore
	attendance repository.AttendanceRepository
	units      repository.ScoreUnitRepository
	scores     repository.ScoreRepository
	sessions   repository.QRSessionRepository
	roster     repository.RosterRepository
	settings   repository.SettingsRepository
	validate   *validator.Validate
}

func newLedgerFixture(t *testing.T, quota int) ledgerFixture {
	t.Helper()
	s := store.NewMemoryStore(quota)
	return ledgerFixture{
		store:      s,
		attendance: repository.NewAttendanceRepository(s),
		units:      repository.NewScoreUnitRepository(s),
		scores:     repository.NewScoreRepository(s),
		sessions:   repository.NewQRSessionRepository(s),
		roster:     repository.NewRosterRepository(s),
		settings:   repository.NewSettingsRepository(s),
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (f ledgerFixture) seed(t *testing.T, name string, records interface{}) {
	t.Helper()
	doc, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), name, doc))
}

// seedRoster writes class c1 with students s1 (1001), s2 (1002) and a removed s3 (1003).
func (f ledgerFixture) seedRoster(t *testing.T) {
	t.Helper()
	f.seed(t, store.CollectionClasses, []models.Class{
		{Meta: models.Meta{ID: "c1"}, Code: "MTH101", Name: "Mathematics"},
		{Meta: models.Meta{ID: "c-gone"}, Code: "OLD", Name: "Retired", IsDeleted: true},
	})
	f.seed(t, store.CollectionStudents, []models.Student{
		{Meta: models.Meta{ID: "s1"}, StudentNumber: "1001", Name: "Ayu", EnrolledClasses: []string{"c1"}},
		{Meta: models.Meta{ID: "s2"}, StudentNumber: "1002", Name: "Budi", EnrolledClasses: []string{"c1", "c2"}},
		{Meta: models.Meta{ID: "s3"}, StudentNumber: "1003", Name: "Citra", EnrolledClasses: []string{"c1"}, IsDeleted: true},
	})
}

type manualClock struct {
	current time.Time
}

func newManualClock() *manualClock {
	return &manualClock{current: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	return c.current
}

func (c *manualClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
