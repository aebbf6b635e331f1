package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for attendance and session dates.
const DateLayout = "2006-01-02"

// AttendanceStatus represents the status recorded for a student on a day.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusLeave   AttendanceStatus = "leave"
)

// AttendanceStatuses lists every supported status in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendanceStatusPresent,
	AttendanceStatusAbsent,
	AttendanceStatusLate,
	AttendanceStatusLeave,
}

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts toward the attendance percentage.
// Late arrivals attended the class; punctuality is tracked by the status alone.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// AttendanceRecord is the single status event for a (class, student, date) key.
type AttendanceRecord struct {
	Meta
	ClassID   string           `json:"class_id"`
	StudentID string           `json:"student_id"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
}

// Matches reports whether the record belongs to the given key.
func (r AttendanceRecord) Matches(classID, studentID, date string) bool {
	return r.ClassID == classID && r.StudentID == studentID && r.Date == date
}

// AttendanceStats summarises a student's attendance in one class.
type AttendanceStats struct {
	Percentage float64 `json:"percentage"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
}

// ParseDate validates a YYYY-MM-DD calendar day.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}
