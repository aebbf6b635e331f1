package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

func newTestScoreService(t *testing.T) (ScoreService, ledgerFixture) {
	t.Helper()
	fixture := newLedgerFixture(t, 0)
	fixture.seedRoster(t)
	return NewScoreService(fixture.units, fixture.scores, fixture.roster, fixture.validate, testLogger()), fixture
}

func createUnit(t *testing.T, svc ScoreService, classID, name string, maxScore, weight float64) models.ScoreUnit {
	t.Helper()
	unit, err := svc.CreateUnit(context.Background(), dto.ScoreUnitRequest{
		ClassID:  classID,
		Name:     name,
		MaxScore: maxScore,
		Weight:   weight,
	})
	require.NoError(t, err)
	return unit
}

func TestScoreCreateUnitValidatesAndSanitises(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()

	_, err := svc.CreateUnit(ctx, dto.ScoreUnitRequest{ClassID: "c1", Name: "Quiz", MaxScore: 0, Weight: 10})
	require.Error(t, err)
	_, err = svc.CreateUnit(ctx, dto.ScoreUnitRequest{ClassID: "c1", Name: "Quiz", MaxScore: 10, Weight: 120})
	require.Error(t, err)

	unit, err := svc.CreateUnit(ctx, dto.ScoreUnitRequest{ClassID: "c1", Name: "<b>Midterm</b>", MaxScore: 100, Weight: 30, Note: "<script>x</script>chapter 1-4"})
	require.NoError(t, err)
	require.Equal(t, "Midterm", unit.Name)
	require.Equal(t, "chapter 1-4", unit.Note)
	require.NotEmpty(t, unit.ID)
}

func TestScoreCalculateTotal(t *testing.T) {
	ctx := context.Background()

	t.Run("single unit", func(t *testing.T) {
		svc, _ := newTestScoreService(t)
		unit := createUnit(t, svc, "c1", "Final", 50, 100)
		_, err := svc.Set(ctx, "s1", unit.ID, "37.5")
		require.NoError(t, err)

		total, err := svc.CalculateTotal(ctx, "s1", "c1")
		require.NoError(t, err)
		require.Equal(t, 75.0, total.Percentage)
	})

	t.Run("weighted units", func(t *testing.T) {
		svc, _ := newTestScoreService(t)
		quiz := createUnit(t, svc, "c1", "Quiz", 100, 50)
		exam := createUnit(t, svc, "c1", "Exam", 100, 50)
		_, err := svc.Set(ctx, "s1", quiz.ID, "100")
		require.NoError(t, err)
		_, err = svc.Set(ctx, "s1", exam.ID, "50")
		require.NoError(t, err)

		total, err := svc.CalculateTotal(ctx, "s1", "c1")
		require.NoError(t, err)
		require.Equal(t, 75.0, total.Percentage)
		require.Equal(t, 100.0, total.WeightUsed)
	})

	t.Run("units scaled by max score", func(t *testing.T) {
		svc, _ := newTestScoreService(t)
		first := createUnit(t, svc, "c1", "Quiz 1", 50, 50)
		second := createUnit(t, svc, "c1", "Quiz 2", 50, 50)
		_, err := svc.Set(ctx, "s1", first.ID, "25")
		require.NoError(t, err)
		_, err = svc.Set(ctx, "s1", second.ID, "50")
		require.NoError(t, err)

		total, err := svc.CalculateTotal(ctx, "s1", "c1")
		require.NoError(t, err)
		require.Equal(t, 75.0, total.Percentage)
		require.Equal(t, 100.0, total.WeightUsed)
	})

	t.Run("ungraded units are skipped without renormalising", func(t *testing.T) {
		svc, _ := newTestScoreService(t)
		quiz := createUnit(t, svc, "c1", "Quiz", 20, 40)
		createUnit(t, svc, "c1", "Exam", 100, 60)
		_, err := svc.Set(ctx, "s1", quiz.ID, "20")
		require.NoError(t, err)

		total, err := svc.CalculateTotal(ctx, "s1", "c1")
		require.NoError(t, err)
		require.Equal(t, 40.0, total.Percentage)
		require.Equal(t, 40.0, total.WeightUsed)
	})

	t.Run("no scores", func(t *testing.T) {
		svc, _ := newTestScoreService(t)
		createUnit(t, svc, "c1", "Quiz", 20, 40)
		total, err := svc.CalculateTotal(ctx, "s2", "c1")
		require.NoError(t, err)
		require.Equal(t, 0.0, total.Percentage)
	})
}

func TestScoreSetClampsAndFlagsInput(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()
	unit := createUnit(t, svc, "c1", "Quiz", 20, 10)

	entry, err := svc.Set(ctx, "s1", unit.ID, "25")
	require.NoError(t, err)
	require.True(t, entry.Clamped)
	require.Equal(t, 20.0, entry.Record.Score)

	entry, err = svc.Set(ctx, "s1", unit.ID, "-3")
	require.NoError(t, err)
	require.True(t, entry.Clamped)
	require.Equal(t, 0.0, entry.Record.Score)

	entry, err = svc.Set(ctx, "s1", unit.ID, "abc")
	require.NoError(t, err)
	require.True(t, entry.Unparsed)
	require.Equal(t, 0.0, entry.Record.Score)

	entry, err = svc.Set(ctx, "s1", unit.ID, "12abc")
	require.NoError(t, err)
	require.True(t, entry.Unparsed)
	require.Equal(t, 0.0, entry.Record.Score)

	records, err := svc.GetByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	_, err = svc.Set(ctx, "s1", "missing", "10")
	require.ErrorIs(t, err, ErrScoreUnitNotFound)
}

func TestScoreDeleteUnitCascades(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()
	unit := createUnit(t, svc, "c1", "Quiz", 20, 10)
	other := createUnit(t, svc, "c1", "Essay", 20, 10)

	for _, student := range []string{"s1", "s2"} {
		_, err := svc.Set(ctx, student, unit.ID, "10")
		require.NoError(t, err)
	}
	_, err := svc.Set(ctx, "s1", other.ID, "15")
	require.NoError(t, err)

	removed, err := svc.DeleteUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	records, err := svc.GetByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = svc.GetUnit(ctx, unit.ID)
	require.ErrorIs(t, err, ErrScoreUnitNotFound)

	remaining, err := svc.GetByUnit(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	_, err = svc.DeleteUnit(ctx, unit.ID)
	require.ErrorIs(t, err, ErrScoreUnitNotFound)
}

func TestScoreTotalWeightAndUpdate(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()
	quiz := createUnit(t, svc, "c1", "Quiz", 20, 30)
	createUnit(t, svc, "c1", "Exam", 100, 50)
	createUnit(t, svc, "c2", "Lab", 10, 100)

	weight, err := svc.TotalWeight(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 80.0, weight)

	updated, err := svc.UpdateUnit(ctx, quiz.ID, dto.ScoreUnitRequest{ClassID: "c1", Name: "Quizzes", MaxScore: 20, Weight: 50})
	require.NoError(t, err)
	require.Equal(t, "Quizzes", updated.Name)

	weight, err = svc.TotalWeight(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 100.0, weight)

	_, err = svc.UpdateUnit(ctx, "missing", dto.ScoreUnitRequest{ClassID: "c1", Name: "X", MaxScore: 1})
	require.ErrorIs(t, err, ErrScoreUnitNotFound)
}

func TestScoreGetByStudentClass(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()
	math := createUnit(t, svc, "c1", "Quiz", 20, 30)
	lab := createUnit(t, svc, "c2", "Lab", 10, 100)

	_, err := svc.Set(ctx, "s2", math.ID, "10")
	require.NoError(t, err)
	_, err = svc.Set(ctx, "s2", lab.ID, "7")
	require.NoError(t, err)

	records, err := svc.GetByStudentClass(ctx, "s2", "c1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, math.ID, records[0].UnitID)

	records, err = svc.GetByStudentClass(ctx, "s2", "c9")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestScoreImport(t *testing.T) {
	svc, _ := newTestScoreService(t)
	ctx := context.Background()
	unit := createUnit(t, svc, "c1", "Quiz", 20, 30)

	result, err := svc.ImportScores(ctx, "c1", unit.ID, []dto.ScoreImportRow{
		{Line: 2, StudentNumber: "1001", Score: "18"},
		{Line: 3, StudentNumber: " 1002 ", Score: "40"},
		{Line: 4, StudentNumber: "1003", Score: "10"},
		{Line: 5, StudentNumber: "", Score: "10"},
		{Line: 6, StudentNumber: "1001", Score: "n/a"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 1, result.Clamped)
	require.Len(t, result.Errors, 3)
	require.Equal(t, 4, result.Errors[0].Line)

	records, err := svc.GetByUnit(ctx, unit.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = svc.ImportScores(ctx, "c2", unit.ID, nil)
	require.ErrorIs(t, err, ErrScoreUnitNotFound)
}
