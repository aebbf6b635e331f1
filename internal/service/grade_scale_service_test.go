package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/grading"
)

func TestGradeScaleDefaultsAndClassify(t *testing.T) {
	fixture := newLedgerFixture(t, 0)
	svc := NewGradeScaleService(fixture.settings, fixture.validate, testLogger())
	ctx := context.Background()

	scale, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, grading.DefaultScale(), scale)

	cases := map[float64]string{80: "A", 79.9: "B+", 75: "B+", 50: "D", 49.9: "F", -5: "F", 150: "A"}
	for percentage, letter := range cases {
		got, err := svc.Classify(ctx, percentage)
		require.NoError(t, err)
		require.Equal(t, letter, got, "percentage %v", percentage)
	}
}

func TestGradeScaleSaveAppliesImmediately(t *testing.T) {
	fixture := newLedgerFixture(t, 0)
	svc := NewGradeScaleService(fixture.settings, fixture.validate, testLogger())
	ctx := context.Background()

	custom := grading.Scale{A: 90, BPlus: 85, B: 80, CPlus: 75, C: 70, DPlus: 65, D: 60}
	_, err := svc.Save(ctx, custom)
	require.NoError(t, err)

	letter, err := svc.Classify(ctx, 85)
	require.NoError(t, err)
	require.Equal(t, "B+", letter)

	_, err = svc.Save(ctx, grading.Scale{A: 120})
	require.Error(t, err)

	other := NewGradeScaleService(fixture.settings, fixture.validate, testLogger())
	loaded, err := other.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, custom, loaded)

	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, grading.DefaultScale(), reset)

	letter, err = svc.Classify(ctx, 85)
	require.NoError(t, err)
	require.Equal(t, "A", letter)
}

func TestGradeScaleAcceptsNonMonotonicScale(t *testing.T) {
	fixture := newLedgerFixture(t, 0)
	svc := NewGradeScaleService(fixture.settings, fixture.validate, testLogger())
	ctx := context.Background()

	scale := grading.Scale{A: 60, BPlus: 90, B: 70, CPlus: 65, C: 60, DPlus: 55, D: 50}
	_, err := svc.Save(ctx, scale)
	require.NoError(t, err)

	letter, err := svc.Classify(ctx, 95)
	require.NoError(t, err)
	require.Equal(t, "A", letter)
}
