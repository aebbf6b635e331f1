package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/grading"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

// ErrClassNotFound indicates the class is missing from the roster.
var ErrClassNotFound = errors.New("class not found")

const fullWeight = 100.0

// GradebookService assembles per-class grade reports.
type GradebookService interface {
	Build(ctx context.Context, classID string) (dto.GradebookResponse, error)
}

type gradebookService struct {
	roster     repository.RosterRepository
	units      repository.ScoreUnitRepository
	scores     repository.ScoreRepository
	attendance repository.AttendanceRepository
	grades     GradeScaleService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewGradebookService constructs the report builder.
func NewGradebookService(
	roster repository.RosterRepository,
	units repository.ScoreUnitRepository,
	scores repository.ScoreRepository,
	attendance repository.AttendanceRepository,
	grades GradeScaleService,
	logger zerolog.Logger,
) GradebookService {
	return &gradebookService{
		roster:     roster,
		units:      units,
		scores:     scores,
		attendance: attendance,
		grades:     grades,
		logger:     logger.With().Str("component", "gradebook_service").Logger(),
		now:        time.Now,
	}
}

func (s *gradebookService) Build(ctx context.Context, classID string) (dto.GradebookResponse, error) {
	class, ok, err := s.roster.GetClass(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}
	if !ok {
		return dto.GradebookResponse{}, ErrClassNotFound
	}

	students, err := s.roster.ListStudentsByClass(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}
	units, err := s.units.ListByClass(ctx, classID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	unitIDs := make([]string, 0, len(units))
	totalWeight := 0.0
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.ID)
		totalWeight += unit.Weight
	}

	records, err := s.scores.List(ctx, repository.ScoreFilter{UnitIDs: unitIDs})
	if err != nil {
		return dto.GradebookResponse{}, err
	}
	byStudent := make(map[string][]models.ScoreRecord, len(students))
	for _, record := range records {
		byStudent[record.StudentID] = append(byStudent[record.StudentID], record)
	}

	attendance, err := s.attendance.List(ctx, repository.AttendanceFilter{ClassID: stringPtr(classID)})
	if err != nil {
		return dto.GradebookResponse{}, err
	}
	presence := make(map[string][]models.AttendanceRecord, len(students))
	for _, record := range attendance {
		presence[record.StudentID] = append(presence[record.StudentID], record)
	}

	scale, err := s.grades.Get(ctx)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	sort.SliceStable(students, func(i, j int) bool {
		return students[i].StudentNumber < students[j].StudentNumber
	})

	rows := make([]dto.GradebookRow, 0, len(students))
	for _, student := range students {
		studentScores := byStudent[student.ID]
		total := weightedTotal(units, studentScores)
		letter := scale.Classify(total.Percentage)

		cells := make(map[string]float64, len(studentScores))
		for _, record := range studentScores {
			cells[record.UnitID] = record.Score
		}

		rows = append(rows, dto.GradebookRow{
			StudentID:     student.ID,
			StudentNumber: student.StudentNumber,
			Name:          student.Name,
			Scores:        cells,
			Percentage:    total.Percentage,
			WeightUsed:    total.WeightUsed,
			Letter:        letter,
			GradePoint:    grading.GradePoint(letter),
			Attendance:    attendanceStats(presence[student.ID]),
		})
	}

	if units == nil {
		units = []models.ScoreUnit{}
	}
	response := dto.GradebookResponse{
		ClassID:       class.ID,
		ClassCode:     class.Code,
		ClassName:     class.Name,
		Units:         units,
		TotalWeight:   roundTenth(totalWeight),
		WeightWarning: len(units) > 0 && math.Abs(totalWeight-fullWeight) > 1e-9,
		Rows:          rows,
		GeneratedAt:   s.now().UTC(),
	}

	s.logger.Debug().Str("class_id", classID).Int("students", len(rows)).Int("units", len(units)).Msg("gradebook built")
	return response, nil
}
