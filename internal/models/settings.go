package models

import "github.com/noah-isme/school-ledger-api/internal/grading"

// Settings is the process-wide configuration document.
type Settings struct {
	GradeScale grading.Scale `json:"grade_scale"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{GradeScale: grading.DefaultScale()}
}
