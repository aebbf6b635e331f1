package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

// ErrScoreUnitNotFound indicates the referenced score unit does not exist.
var ErrScoreUnitNotFound = errors.New("score unit not found")

// ScoreService is the score ledger together with the score units it grades against.
type ScoreService interface {
	CreateUnit(ctx context.Context, payload dto.ScoreUnitRequest) (models.ScoreUnit, error)
	UpdateUnit(ctx context.Context, id string, payload dto.ScoreUnitRequest) (models.ScoreUnit, error)
	GetUnit(ctx context.Context, id string) (models.ScoreUnit, error)
	ListUnits(ctx context.Context, classID string) ([]models.ScoreUnit, error)
	DeleteUnit(ctx context.Context, id string) (int, error)
	TotalWeight(ctx context.Context, classID string) (float64, error)

	Set(ctx context.Context, studentID, unitID, raw string) (models.ScoreEntry, error)
	GetByUnit(ctx context.Context, unitID string) ([]models.ScoreRecord, error)
	GetByStudentClass(ctx context.Context, studentID, classID string) ([]models.ScoreRecord, error)
	CalculateTotal(ctx context.Context, studentID, classID string) (models.ScoreTotal, error)
	ImportScores(ctx context.Context, classID, unitID string, rows []dto.ScoreImportRow) (dto.ScoreImportResult, error)
}

type scoreService struct {
	units     repository.ScoreUnitRepository
	scores    repository.ScoreRepository
	roster    repository.RosterRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	newID     func() string
}

// NewScoreService constructs the score ledger.
func NewScoreService(units repository.ScoreUnitRepository, scores repository.ScoreRepository, roster repository.RosterRepository, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		units:     units,
		scores:    scores,
		roster:    roster,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "score_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/school-ledger-api/internal/service/score"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *scoreService) CreateUnit(ctx context.Context, payload dto.ScoreUnitRequest) (models.ScoreUnit, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.ScoreUnit{}, err
	}

	unit := models.ScoreUnit{
		ClassID:  trimmed(payload.ClassID),
		Name:     trimmed(s.sanitizer.Sanitize(payload.Name)),
		MaxScore: payload.MaxScore,
		Weight:   payload.Weight,
		Note:     trimmed(s.sanitizer.Sanitize(payload.Note)),
	}
	unit.Stamp(s.newID(), s.now().UTC())

	err := s.units.Mutate(ctx, func(units []models.ScoreUnit) ([]models.ScoreUnit, bool, error) {
		return append(units, unit), true, nil
	})
	if err != nil {
		recordStorageFailure("score_unit.create", err)
		return models.ScoreUnit{}, err
	}
	return unit, nil
}

func (s *scoreService) UpdateUnit(ctx context.Context, id string, payload dto.ScoreUnitRequest) (models.ScoreUnit, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.ScoreUnit{}, err
	}

	var updated models.ScoreUnit
	err := s.units.Mutate(ctx, func(units []models.ScoreUnit) ([]models.ScoreUnit, bool, error) {
		for i := range units {
			if units[i].ID != id {
				continue
			}
			units[i].ClassID = trimmed(payload.ClassID)
			units[i].Name = trimmed(s.sanitizer.Sanitize(payload.Name))
			units[i].MaxScore = payload.MaxScore
			units[i].Weight = payload.Weight
			units[i].Note = trimmed(s.sanitizer.Sanitize(payload.Note))
			units[i].Touch(s.now().UTC())
			updated = units[i]
			return units, true, nil
		}
		return units, false, ErrScoreUnitNotFound
	})
	if err != nil {
		recordStorageFailure("score_unit.update", err)
		return models.ScoreUnit{}, err
	}
	return updated, nil
}

func (s *scoreService) GetUnit(ctx context.Context, id string) (models.ScoreUnit, error) {
	unit, ok, err := s.units.GetByID(ctx, id)
	if err != nil {
		return models.ScoreUnit{}, err
	}
	if !ok {
		return models.ScoreUnit{}, ErrScoreUnitNotFound
	}
	return unit, nil
}

func (s *scoreService) ListUnits(ctx context.Context, classID string) ([]models.ScoreUnit, error) {
	return s.units.ListByClass(ctx, classID)
}

// DeleteUnit removes the unit and every score recorded against it. Scores go first so
// a failure in between never leaves scores pointing at a missing unit.
func (s *scoreService) DeleteUnit(ctx context.Context, id string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "score_unit.delete", trace.WithAttributes(attribute.String("score.unit_id", id)))
	defer span.End()

	if _, err := s.GetUnit(ctx, id); err != nil {
		span.SetStatus(codes.Error, "unit_lookup_failed")
		return 0, err
	}

	removed := 0
	err := s.scores.Mutate(ctx, func(records []models.ScoreRecord) ([]models.ScoreRecord, bool, error) {
		kept := records[:0]
		for _, record := range records {
			if record.UnitID == id {
				removed++
				continue
			}
			kept = append(kept, record)
		}
		return kept, removed > 0, nil
	})
	if err != nil {
		recordStorageFailure("score_unit.delete", err)
		span.RecordError(err)
		return 0, err
	}

	err = s.units.Mutate(ctx, func(units []models.ScoreUnit) ([]models.ScoreUnit, bool, error) {
		kept := units[:0]
		for _, unit := range units {
			if unit.ID != id {
				kept = append(kept, unit)
			}
		}
		return kept, true, nil
	})
	if err != nil {
		recordStorageFailure("score_unit.delete", err)
		span.RecordError(err)
		s.logger.Error().Err(err).Str("unit_id", id).Int("scores_removed", removed).Msg("scores removed but unit delete failed")
		return removed, err
	}

	span.SetAttributes(attribute.Int("score.removed", removed))
	return removed, nil
}

// TotalWeight sums the weights of a class's units. Anything but 100 deserves a warning.
func (s *scoreService) TotalWeight(ctx context.Context, classID string) (float64, error) {
	units, err := s.units.ListByClass(ctx, classID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, unit := range units {
		total += unit.Weight
	}
	return total, nil
}

// parseScore coerces user input to a number. Non-numeric input becomes zero and is
// reported as unparsed so callers can tell it apart from a typed zero.
func parseScore(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// Set upserts a score for (student, unit), clamping it to [0, max_score].
func (s *scoreService) Set(ctx context.Context, studentID, unitID, raw string) (models.ScoreEntry, error) {
	ctx, span := s.tracer.Start(ctx, "score.set", trace.WithAttributes(
		attribute.String("score.student_id", studentID),
		attribute.String("score.unit_id", unitID),
	))
	defer span.End()

	unit, err := s.GetUnit(ctx, unitID)
	if err != nil {
		span.SetStatus(codes.Error, "unit_lookup_failed")
		return models.ScoreEntry{}, err
	}

	value, parsed := parseScore(raw)
	entry := models.ScoreEntry{Unparsed: !parsed}
	if value < 0 {
		value = 0
		entry.Clamped = true
	}
	if value > unit.MaxScore {
		value = unit.MaxScore
		entry.Clamped = true
	}

	err = s.scores.Mutate(ctx, func(records []models.ScoreRecord) ([]models.ScoreRecord, bool, error) {
		now := s.now().UTC()
		for i := range records {
			if records[i].StudentID == studentID && records[i].UnitID == unitID {
				records[i].Score = value
				records[i].Touch(now)
				entry.Record = records[i]
				return records, true, nil
			}
		}
		record := models.ScoreRecord{StudentID: studentID, UnitID: unitID, Score: value}
		record.Stamp(s.newID(), now)
		entry.Record = record
		return append(records, record), true, nil
	})
	if err != nil {
		recordStorageFailure("score.set", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_write_failed")
		return models.ScoreEntry{}, err
	}

	if entry.Unparsed {
		s.logger.Warn().Str("student_id", studentID).Str("unit_id", unitID).Msg("non-numeric score stored as zero")
	}

	return entry, nil
}

func (s *scoreService) GetByUnit(ctx context.Context, unitID string) ([]models.ScoreRecord, error) {
	return s.scores.List(ctx, repository.ScoreFilter{UnitID: stringPtr(unitID)})
}

func (s *scoreService) GetByStudentClass(ctx context.Context, studentID, classID string) ([]models.ScoreRecord, error) {
	units, err := s.units.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	unitIDs := make([]string, 0, len(units))
	for _, unit := range units {
		unitIDs = append(unitIDs, unit.ID)
	}
	return s.scores.List(ctx, repository.ScoreFilter{StudentID: stringPtr(studentID), UnitIDs: unitIDs})
}

// CalculateTotal sums each graded unit's percentage scaled by its weight. The result is
// not renormalised, so classes whose weights do not add up to 100 are capped accordingly.
func (s *scoreService) CalculateTotal(ctx context.Context, studentID, classID string) (models.ScoreTotal, error) {
	units, err := s.units.ListByClass(ctx, classID)
	if err != nil {
		return models.ScoreTotal{}, err
	}
	records, err := s.scores.List(ctx, repository.ScoreFilter{StudentID: stringPtr(studentID)})
	if err != nil {
		return models.ScoreTotal{}, err
	}
	return weightedTotal(units, records), nil
}

func weightedTotal(units []models.ScoreUnit, records []models.ScoreRecord) models.ScoreTotal {
	byUnit := make(map[string]models.ScoreRecord, len(records))
	for _, record := range records {
		if _, exists := byUnit[record.UnitID]; !exists {
			byUnit[record.UnitID] = record
		}
	}

	var weightedSum, weightUsed float64
	for _, unit := range units {
		record, graded := byUnit[unit.ID]
		if !graded || unit.MaxScore <= 0 {
			continue
		}
		unitPercentage := record.Score / unit.MaxScore * 100
		weightedSum += unitPercentage * (unit.Weight / 100)
		weightUsed += unit.Weight
	}

	return models.ScoreTotal{
		Percentage: roundTenth(weightedSum),
		WeightUsed: weightUsed,
	}
}

// ImportScores feeds (student number, score) rows into Set. Rows with a missing or
// unknown student, or a non-numeric score, are reported and skipped.
func (s *scoreService) ImportScores(ctx context.Context, classID, unitID string, rows []dto.ScoreImportRow) (dto.ScoreImportResult, error) {
	unit, err := s.GetUnit(ctx, unitID)
	if err != nil {
		return dto.ScoreImportResult{}, err
	}
	if unit.ClassID != classID {
		return dto.ScoreImportResult{}, ErrScoreUnitNotFound
	}

	result := dto.ScoreImportResult{Errors: []dto.ScoreImportError{}}
	for _, row := range rows {
		number := trimmed(row.StudentNumber)
		if number == "" {
			result.Errors = append(result.Errors, dto.ScoreImportError{Line: row.Line, Message: "missing student number"})
			continue
		}

		student, ok, err := s.roster.FindStudentByNumber(ctx, classID, number)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Errors = append(result.Errors, dto.ScoreImportError{Line: row.Line, Message: fmt.Sprintf("student %s not found", number)})
			continue
		}

		if _, parsed := parseScore(row.Score); !parsed {
			result.Errors = append(result.Errors, dto.ScoreImportError{Line: row.Line, Message: "invalid score"})
			continue
		}

		entry, err := s.Set(ctx, student.ID, unitID, row.Score)
		if err != nil {
			return result, err
		}
		result.Imported++
		if entry.Clamped {
			result.Clamped++
		}
	}

	s.logger.Info().Str("class_id", classID).Str("unit_id", unitID).Int("imported", result.Imported).Int("skipped", len(result.Errors)).Msg("scores imported")
	return result, nil
}
