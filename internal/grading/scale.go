// Package grading maps percentages to letter grades.
package grading

// Letter grades in classification order. F is implicit below the D threshold.
const (
	LetterA     = "A"
	LetterBPlus = "B+"
	LetterB     = "B"
	LetterCPlus = "C+"
	LetterC     = "C"
	LetterDPlus = "D+"
	LetterD     = "D"
	LetterF     = "F"
)

// Scale holds the minimum percentage for every passing letter.
type Scale struct {
	A     float64 `json:"A" validate:"gte=0,lte=100"`
	BPlus float64 `json:"B+" validate:"gte=0,lte=100"`
	B     float64 `json:"B" validate:"gte=0,lte=100"`
	CPlus float64 `json:"C+" validate:"gte=0,lte=100"`
	C     float64 `json:"C" validate:"gte=0,lte=100"`
	DPlus float64 `json:"D+" validate:"gte=0,lte=100"`
	D     float64 `json:"D" validate:"gte=0,lte=100"`
}

// Threshold pairs a letter with its minimum percentage.
type Threshold struct {
	Letter  string  `json:"letter"`
	Minimum float64 `json:"minimum"`
}

// DefaultScale returns the stock scale: A from 80, then every five points down to D at 50.
func DefaultScale() Scale {
	return Scale{A: 80, BPlus: 75, B: 70, CPlus: 65, C: 60, DPlus: 55, D: 50}
}

// Thresholds lists the letters in evaluation order.
func (s Scale) Thresholds() []Threshold {
	return []Threshold{
		{Letter: LetterA, Minimum: s.A},
		{Letter: LetterBPlus, Minimum: s.BPlus},
		{Letter: LetterB, Minimum: s.B},
		{Letter: LetterCPlus, Minimum: s.CPlus},
		{Letter: LetterC, Minimum: s.C},
		{Letter: LetterDPlus, Minimum: s.DPlus},
		{Letter: LetterD, Minimum: s.D},
	}
}

// Classify returns the first letter whose threshold the percentage meets, or F.
// Input is not clamped; values outside 0-100 follow the same rule.
func (s Scale) Classify(percentage float64) string {
	for _, threshold := range s.Thresholds() {
		if percentage >= threshold.Minimum {
			return threshold.Letter
		}
	}
	return LetterF
}

// Monotonic reports whether thresholds never increase from A to D.
// Classification still works otherwise, but lower letters may become unreachable.
func (s Scale) Monotonic() bool {
	thresholds := s.Thresholds()
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i].Minimum > thresholds[i-1].Minimum {
			return false
		}
	}
	return true
}

var gradePoints = map[string]float64{
	LetterA:     4.0,
	LetterBPlus: 3.5,
	LetterB:     3.0,
	LetterCPlus: 2.5,
	LetterC:     2.0,
	LetterDPlus: 1.5,
	LetterD:     1.0,
	LetterF:     0.0,
}

// GradePoint converts a letter to its four-point value. Unknown letters score zero.
func GradePoint(letter string) float64 {
	return gradePoints[letter]
}
