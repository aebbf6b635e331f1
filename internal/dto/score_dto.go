package dto

import "github.com/noah-isme/school-ledger-api/internal/models"

// ScoreUnitRequest creates or updates a score unit.
type ScoreUnitRequest struct {
	ClassID  string  `json:"class_id" validate:"required"`
	Name     string  `json:"name" validate:"required,max=120"`
	MaxScore float64 `json:"max_score" validate:"gt=0"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=100"`
	Note     string  `json:"note" validate:"max=500"`
}

// ScoreSetRequest records a score. Score accepts a number or free text as typed by the user.
type ScoreSetRequest struct {
	StudentID string      `json:"student_id" validate:"required"`
	Score     interface{} `json:"score"`
}

// ScoreUnitListResponse lists a class's units with their weight total.
type ScoreUnitListResponse struct {
	ClassID       string             `json:"class_id"`
	Units         []models.ScoreUnit `json:"units"`
	TotalWeight   float64            `json:"total_weight"`
	WeightWarning bool               `json:"weight_warning"`
}

// ScoreUnitDeleteResponse reports the cascade of a unit deletion.
type ScoreUnitDeleteResponse struct {
	UnitID        string `json:"unit_id"`
	ScoresRemoved int    `json:"scores_removed"`
}

// ScoreTotalResponse reports a student's weighted percentage and letter grade in a class.
type ScoreTotalResponse struct {
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	models.ScoreTotal
	Letter     string               `json:"letter"`
	GradePoint float64              `json:"grade_point"`
	Scores     []models.ScoreRecord `json:"scores"`
}

// ScoreImportRow is one (student number, raw score) pair from an imported sheet.
type ScoreImportRow struct {
	Line          int    `json:"line"`
	StudentNumber string `json:"student_number"`
	Score         string `json:"score"`
}

// ScoreImportError explains why a row was skipped.
type ScoreImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ScoreImportResult summarises a score import.
type ScoreImportResult struct {
	Imported int                `json:"imported"`
	Clamped  int                `json:"clamped"`
	Errors   []ScoreImportError `json:"errors"`
}
