package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/school-ledger-api/internal/models"
)

// GormStore keeps one row per collection in the stored_documents table.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore wraps a gorm connection (postgres or sqlite).
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Migrate creates the document table when missing.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.StoredDocument{}); err != nil {
		return fmt.Errorf("%w: migrate documents: %v", ErrStorage, err)
	}
	return nil
}

func (s *GormStore) Load(ctx context.Context, name string) ([]byte, error) {
	var doc models.StoredDocument
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrStorage, name, err)
	}
	return []byte(doc.Body), nil
}

func (s *GormStore) Save(ctx context.Context, name string, doc []byte) error {
	row := models.StoredDocument{
		Name:      name,
		Body:      datatypes.JSON(doc),
		UpdatedAt: s.now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStorage, name, err)
	}
	return nil
}
