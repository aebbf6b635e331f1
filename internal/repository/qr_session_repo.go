package repository

import (
	"context"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// QRSessionRepository defines data operations for check-in sessions.
type QRSessionRepository interface {
	List(ctx context.Context) ([]models.QRSession, error)
	GetByID(ctx context.Context, id string) (models.QRSession, bool, error)
	Mutate(ctx context.Context, fn store.MutateFunc[models.QRSession]) error
}

type qrSessionRepository struct {
	sessions *store.Collection[models.QRSession]
}

// NewQRSessionRepository instantiates the repository.
func NewQRSessionRepository(s store.Store) QRSessionRepository {
	return &qrSessionRepository{sessions: store.NewCollection[models.QRSession](s, store.CollectionQRSessions)}
}

func (r *qrSessionRepository) List(ctx context.Context) ([]models.QRSession, error) {
	return r.sessions.All(ctx)
}

func (r *qrSessionRepository) GetByID(ctx context.Context, id string) (models.QRSession, bool, error) {
	return r.sessions.Find(ctx, id)
}

func (r *qrSessionRepository) Mutate(ctx context.Context, fn store.MutateFunc[models.QRSession]) error {
	return r.sessions.Mutate(ctx, fn)
}
