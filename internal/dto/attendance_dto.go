package dto

import "github.com/noah-isme/school-ledger-api/internal/models"

// AttendanceSetRequest records one student's status for a class day.
type AttendanceSetRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Date      string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late leave"`
}

// AttendanceEntry is one line of a bulk attendance submission.
type AttendanceEntry struct {
	StudentID string                  `json:"student_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=present absent late leave"`
}

// AttendanceBulkRequest records statuses for many students on one class day.
type AttendanceBulkRequest struct {
	Date    string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceStatsResponse reports a student's attendance history and percentage in a class.
type AttendanceStatsResponse struct {
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	models.AttendanceStats
	Records []models.AttendanceRecord `json:"records"`
}

// AttendanceDayResponse lists the records of one class day with per-status counts.
type AttendanceDayResponse struct {
	ClassID string                          `json:"class_id"`
	Date    string                          `json:"date"`
	Records []models.AttendanceRecord       `json:"records"`
	Counts  map[models.AttendanceStatus]int `json:"counts"`
}

// AttendanceDatesResponse lists the days a class has attendance for, newest first.
type AttendanceDatesResponse struct {
	ClassID string   `json:"class_id"`
	Dates   []string `json:"dates"`
}
