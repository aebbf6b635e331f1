package models

// ScoreUnit is one gradable component of a class, such as a midterm.
type ScoreUnit struct {
	Meta
	ClassID  string  `json:"class_id"`
	Name     string  `json:"name"`
	MaxScore float64 `json:"max_score"`
	Weight   float64 `json:"weight"`
	Note     string  `json:"note"`
}

// ScoreRecord stores a student's score for one unit.
type ScoreRecord struct {
	Meta
	StudentID string  `json:"student_id"`
	UnitID    string  `json:"unit_id"`
	Score     float64 `json:"score"`
}

// ScoreEntry is the outcome of writing a score, including how the raw input was coerced.
type ScoreEntry struct {
	Record ScoreRecord `json:"record"`
	// Unparsed is set when the input was not numeric and was stored as zero.
	Unparsed bool `json:"unparsed"`
	// Clamped is set when the input fell outside [0, max_score].
	Clamped bool `json:"clamped"`
}

// ScoreTotal is the weighted percentage of a student in a class.
type ScoreTotal struct {
	Percentage float64 `json:"percentage"`
	WeightUsed float64 `json:"weight_used"`
}
