package dto

import (
	"time"

	"github.com/noah-isme/school-ledger-api/internal/models"
)

// QRSessionCreateRequest opens a check-in window for a class.
type QRSessionCreateRequest struct {
	ClassID          string `json:"class_id" validate:"required"`
	Date             string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ExpiresInMinutes int    `json:"expires_in_minutes" validate:"omitempty,gte=1,lte=240"`
}

// QRSessionResponse is a session as shown to the teacher.
type QRSessionResponse struct {
	ID               string    `json:"id"`
	ClassID          string    `json:"class_id"`
	Date             string    `json:"date"`
	SessionCode      string    `json:"session_code"`
	ExpiresAt        time.Time `json:"expires_at"`
	ScannedStudents  []string  `json:"scanned_students"`
	ScannedCount     int       `json:"scanned_count"`
	IsActive         bool      `json:"is_active"`
	Open             bool      `json:"open"`
	RemainingSeconds int       `json:"remaining_seconds"`
	ScanURL          string    `json:"scan_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewQRSessionResponse maps a session for API clients.
func NewQRSessionResponse(session models.QRSession, scanURL string, now time.Time) QRSessionResponse {
	scanned := session.ScannedStudents
	if scanned == nil {
		scanned = []string{}
	}
	return QRSessionResponse{
		ID:               session.ID,
		ClassID:          session.ClassID,
		Date:             session.Date,
		SessionCode:      session.SessionCode,
		ExpiresAt:        session.ExpiresAt,
		ScannedStudents:  scanned,
		ScannedCount:     len(scanned),
		IsActive:         session.IsActive,
		Open:             session.Open(now),
		RemainingSeconds: int(session.Remaining(now).Seconds()),
		ScanURL:          scanURL,
		CreatedAt:        session.CreatedAt,
	}
}

// ScanLookupResponse is what a student sees after opening a scan link.
type ScanLookupResponse struct {
	SessionCode string    `json:"session_code"`
	ClassID     string    `json:"class_id"`
	ClassCode   string    `json:"class_code"`
	ClassName   string    `json:"class_name"`
	Date        string    `json:"date"`
	ExpiresAt   time.Time `json:"expires_at"`
	Open        bool      `json:"open"`
}

// CheckInRequest carries the student number typed on the scan page.
type CheckInRequest struct {
	StudentNumber string `json:"student_number" validate:"required,max=32"`
}

// CheckInResponse confirms a successful check-in.
type CheckInResponse struct {
	SessionID     string                  `json:"session_id"`
	ClassID       string                  `json:"class_id"`
	Date          string                  `json:"date"`
	StudentID     string                  `json:"student_id"`
	StudentNumber string                  `json:"student_number"`
	StudentName   string                  `json:"student_name"`
	Status        models.AttendanceStatus `json:"status"`
	ScannedCount  int                     `json:"scanned_count"`
}
