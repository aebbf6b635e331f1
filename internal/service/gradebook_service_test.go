package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

func TestGradebookBuild(t *testing.T) {
	fixture := newLedgerFixture(t, 0)
	fixture.seedRoster(t)
	ctx := context.Background()

	scores := NewScoreService(fixture.units, fixture.scores, fixture.roster, fixture.validate, testLogger())
	attendance := NewAttendanceService(fixture.attendance, testLogger())
	grades := NewGradeScaleService(fixture.settings, fixture.validate, testLogger())
	svc := NewGradebookService(fixture.roster, fixture.units, fixture.scores, fixture.attendance, grades, testLogger())

	quiz := createUnit(t, scores, "c1", "Quiz", 100, 40)
	exam := createUnit(t, scores, "c1", "Exam", 100, 40)
	for student, values := range map[string][2]string{"s1": {"90", "80"}, "s2": {"50", "40"}} {
		_, err := scores.Set(ctx, student, quiz.ID, values[0])
		require.NoError(t, err)
		_, err = scores.Set(ctx, student, exam.ID, values[1])
		require.NoError(t, err)
	}
	_, err := attendance.BulkSet(ctx, "c1", "2024-03-04", []dto.AttendanceEntry{
		{StudentID: "s1", Status: models.AttendanceStatusPresent},
		{StudentID: "s2", Status: models.AttendanceStatusAbsent},
	})
	require.NoError(t, err)

	report, err := svc.Build(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, "MTH101", report.ClassCode)
	require.Len(t, report.Units, 2)
	require.Equal(t, 80.0, report.TotalWeight)
	require.True(t, report.WeightWarning)
	require.Len(t, report.Rows, 2, "removed students are left out")

	first := report.Rows[0]
	require.Equal(t, "1001", first.StudentNumber)
	require.Equal(t, 68.0, first.Percentage)
	require.Equal(t, "C+", first.Letter)
	require.Equal(t, 2.5, first.GradePoint)
	require.Equal(t, 90.0, first.Scores[quiz.ID])
	require.Equal(t, 100.0, first.Attendance.Percentage)

	second := report.Rows[1]
	require.Equal(t, "1002", second.StudentNumber)
	require.Equal(t, 36.0, second.Percentage)
	require.Equal(t, "F", second.Letter)
	require.Equal(t, 0.0, second.Attendance.Percentage)

	_, err = svc.Build(ctx, "c-gone")
	require.ErrorIs(t, err, ErrClassNotFound)
}
