package grading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultScaleClassify(t *testing.T) {
	scale := DefaultScale()

	cases := []struct {
		percentage float64
		expected   string
	}{
		{80, LetterA},
		{79.9, LetterBPlus},
		{75, LetterBPlus},
		{70, LetterB},
		{65, LetterCPlus},
		{60, LetterC},
		{55, LetterDPlus},
		{50, LetterD},
		{49.9, LetterF},
		{0, LetterF},
		{-5, LetterF},
		{150, LetterA},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, scale.Classify(tc.percentage), "percentage %v", tc.percentage)
	}
}

func TestClassifyUsesProvidedScale(t *testing.T) {
	strict := Scale{A: 95, BPlus: 90, B: 85, CPlus: 80, C: 75, DPlus: 70, D: 65}

	require.Equal(t, LetterBPlus, strict.Classify(92))
	require.Equal(t, LetterF, strict.Classify(64.9))
	require.Equal(t, LetterA, DefaultScale().Classify(92))
}

func TestClassifyNonMonotonicScaleFollowsFixedOrder(t *testing.T) {
	scale := Scale{A: 80, BPlus: 90, B: 70, CPlus: 65, C: 60, DPlus: 55, D: 50}

	require.False(t, scale.Monotonic())
	// B+ can never be reached because A is checked first with a lower threshold.
	require.Equal(t, LetterA, scale.Classify(95))
	require.Equal(t, LetterB, scale.Classify(75))
}

func TestMonotonic(t *testing.T) {
	require.True(t, DefaultScale().Monotonic())
	require.True(t, Scale{A: 50, BPlus: 50, B: 50, CPlus: 50, C: 50, DPlus: 50, D: 50}.Monotonic())
}

func TestGradePoint(t *testing.T) {
	require.Equal(t, 4.0, GradePoint(LetterA))
	require.Equal(t, 2.5, GradePoint(LetterCPlus))
	require.Equal(t, 0.0, GradePoint(LetterF))
	require.Equal(t, 0.0, GradePoint("Z"))
}
