package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// RosterRepository resolves classes and students owned by the registries.
// It never writes; records may reference entities that were since removed.
type RosterRepository interface {
	GetClass(ctx context.Context, classID string) (models.Class, bool, error)
	ListStudentsByClass(ctx context.Context, classID string) ([]models.Student, error)
	FindStudentByNumber(ctx context.Context, classID, studentNumber string) (models.Student, bool, error)
}

type rosterRepository struct {
	classes  *store.Collection[models.Class]
	students *store.Collection[models.Student]
}

// NewRosterRepository instantiates the repository.
func NewRosterRepository(s store.Store) RosterRepository {
	return &rosterRepository{
		classes:  store.NewCollection[models.Class](s, store.CollectionClasses),
		students: store.NewCollection[models.Student](s, store.CollectionStudents),
	}
}

func (r *rosterRepository) GetClass(ctx context.Context, classID string) (models.Class, bool, error) {
	class, ok, err := r.classes.Find(ctx, classID)
	if err != nil || !ok {
		return models.Class{}, false, err
	}
	if class.IsDeleted {
		return models.Class{}, false, nil
	}
	return class, true, nil
}

func (r *rosterRepository) ListStudentsByClass(ctx context.Context, classID string) ([]models.Student, error) {
	all, err := r.students.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(all, func(student models.Student) bool { return student.EnrolledIn(classID) }), nil
}

func (r *rosterRepository) FindStudentByNumber(ctx context.Context, classID, studentNumber string) (models.Student, bool, error) {
	enrolled, err := r.ListStudentsByClass(ctx, classID)
	if err != nil {
		return models.Student{}, false, err
	}
	number := strings.TrimSpace(studentNumber)
	for _, student := range enrolled {
		if student.StudentNumber == number {
			return student, true, nil
		}
	}
	return models.Student{}, false, nil
}
