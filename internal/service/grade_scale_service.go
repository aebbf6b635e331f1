package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/grading"
	"github.com/noah-isme/school-ledger-api/internal/repository"
)

// GradeScaleService stores the process-wide grade scale and classifies against it.
type GradeScaleService interface {
	Get(ctx context.Context) (grading.Scale, error)
	Save(ctx context.Context, scale grading.Scale) (grading.Scale, error)
	Reset(ctx context.Context) (grading.Scale, error)
	Classify(ctx context.Context, percentage float64) (string, error)
}

type gradeScaleService struct {
	repo      repository.SettingsRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeScaleService constructs the grade scale service.
func NewGradeScaleService(repo repository.SettingsRepository, validate *validator.Validate, logger zerolog.Logger) GradeScaleService {
	return &gradeScaleService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "grade_scale_service").Logger(),
	}
}

func (s *gradeScaleService) Get(ctx context.Context) (grading.Scale, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return grading.Scale{}, err
	}
	return settings.GradeScale, nil
}

// Save persists the scale. Non-monotonic scales are accepted but logged.
func (s *gradeScaleService) Save(ctx context.Context, scale grading.Scale) (grading.Scale, error) {
	if err := s.validator.Struct(scale); err != nil {
		return grading.Scale{}, err
	}

	settings, err := s.repo.Load(ctx)
	if err != nil {
		return grading.Scale{}, err
	}
	settings.GradeScale = scale
	if err := s.repo.Save(ctx, settings); err != nil {
		recordStorageFailure("settings.save", err)
		return grading.Scale{}, err
	}

	if !scale.Monotonic() {
		s.logger.Warn().Interface("scale", scale).Msg("grade scale thresholds are not non-increasing")
	}
	return scale, nil
}

func (s *gradeScaleService) Reset(ctx context.Context) (grading.Scale, error) {
	return s.Save(ctx, grading.DefaultScale())
}

// Classify loads the current scale on every call so changes apply immediately.
func (s *gradeScaleService) Classify(ctx context.Context, percentage float64) (string, error) {
	scale, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return scale.Classify(percentage), nil
}
