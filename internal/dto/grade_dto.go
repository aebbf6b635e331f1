package dto

import (
	"time"

	"github.com/noah-isme/school-ledger-api/internal/grading"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

// GradeScaleResponse describes the active grade scale.
type GradeScaleResponse struct {
	Scale      grading.Scale       `json:"scale"`
	Thresholds []grading.Threshold `json:"thresholds"`
	Monotonic  bool                `json:"monotonic"`
}

// NewGradeScaleResponse builds the response for a scale.
func NewGradeScaleResponse(scale grading.Scale) GradeScaleResponse {
	return GradeScaleResponse{
		Scale:      scale,
		Thresholds: scale.Thresholds(),
		Monotonic:  scale.Monotonic(),
	}
}

// ClassifyResponse is the letter for a percentage under the active scale.
type ClassifyResponse struct {
	Percentage float64 `json:"percentage"`
	Letter     string  `json:"letter"`
	GradePoint float64 `json:"grade_point"`
}

// GradebookRow is one student's line in a class gradebook.
type GradebookRow struct {
	StudentID     string                 `json:"student_id"`
	StudentNumber string                 `json:"student_number"`
	Name          string                 `json:"name"`
	Scores        map[string]float64     `json:"scores"`
	Percentage    float64                `json:"percentage"`
	WeightUsed    float64                `json:"weight_used"`
	Letter        string                 `json:"letter"`
	GradePoint    float64                `json:"grade_point"`
	Attendance    models.AttendanceStats `json:"attendance"`
}

// GradebookResponse is the full grade report of a class.
type GradebookResponse struct {
	ClassID       string             `json:"class_id"`
	ClassCode     string             `json:"class_code"`
	ClassName     string             `json:"class_name"`
	Units         []models.ScoreUnit `json:"units"`
	TotalWeight   float64            `json:"total_weight"`
	WeightWarning bool               `json:"weight_warning"`
	Rows          []GradebookRow     `json:"rows"`
	GeneratedAt   time.Time          `json:"generated_at"`
}
