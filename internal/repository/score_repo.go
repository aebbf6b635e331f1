package repository

import (
	"context"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// ScoreUnitRepository defines data operations for score units.
type ScoreUnitRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScoreUnit, error)
	GetByID(ctx context.Context, id string) (models.ScoreUnit, bool, error)
	Mutate(ctx context.Context, fn store.MutateFunc[models.ScoreUnit]) error
}

type scoreUnitRepository struct {
	units *store.Collection[models.ScoreUnit]
}

// NewScoreUnitRepository instantiates the repository.
func NewScoreUnitRepository(s store.Store) ScoreUnitRepository {
	return &scoreUnitRepository{units: store.NewCollection[models.ScoreUnit](s, store.CollectionScoreUnits)}
}

func (r *scoreUnitRepository) ListByClass(ctx context.Context, classID string) ([]models.ScoreUnit, error) {
	all, err := r.units.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, func(unit models.ScoreUnit) bool { return unit.ClassID == classID }), nil
}

func (r *scoreUnitRepository) GetByID(ctx context.Context, id string) (models.ScoreUnit, bool, error) {
	return r.units.Find(ctx, id)
}

func (r *scoreUnitRepository) Mutate(ctx context.Context, fn store.MutateFunc[models.ScoreUnit]) error {
	return r.units.Mutate(ctx, fn)
}

// ScoreFilter allows narrowing score queries.
type ScoreFilter struct {
	StudentID *string
	UnitID    *string
	// UnitIDs restricts results to a set of units, typically those of one class.
	UnitIDs []string
}

func (f ScoreFilter) match(record models.ScoreRecord) bool {
	if f.StudentID != nil && record.StudentID != *f.StudentID {
		return false
	}
	if f.UnitID != nil && record.UnitID != *f.UnitID {
		return false
	}
	if f.UnitIDs != nil {
		for _, id := range f.UnitIDs {
			if record.UnitID == id {
				return true
			}
		}
		return false
	}
	return true
}

// ScoreRepository defines data operations for score records.
type ScoreRepository interface {
	List(ctx context.Context, filter ScoreFilter) ([]models.ScoreRecord, error)
	Mutate(ctx context.Context, fn store.MutateFunc[models.ScoreRecord]) error
}

type scoreRepository struct {
	scores *store.Collection[models.ScoreRecord]
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(s store.Store) ScoreRepository {
	return &scoreRepository{scores: store.NewCollection[models.ScoreRecord](s, store.CollectionScores)}
}

func (r *scoreRepository) List(ctx context.Context, filter ScoreFilter) ([]models.ScoreRecord, error) {
	all, err := r.scores.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, filter.match), nil
}

func (r *scoreRepository) Mutate(ctx context.Context, fn store.MutateFunc[models.ScoreRecord]) error {
	return r.scores.Mutate(ctx, fn)
}
