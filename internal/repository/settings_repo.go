package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// SettingsRepository persists the single settings document.
type SettingsRepository interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

type settingsRepository struct {
	store store.Store
}

// NewSettingsRepository instantiates the repository.
func NewSettingsRepository(s store.Store) SettingsRepository {
	return &settingsRepository{store: s}
}

// Load merges the stored document over the defaults, so missing keys keep their default.
func (r *settingsRepository) Load(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	doc, err := r.store.Load(ctx, store.CollectionSettings)
	if err != nil {
		return models.Settings{}, err
	}
	if len(doc) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(doc, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("%w: decode settings: %v", store.ErrStorage, err)
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings models.Settings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: encode settings: %v", store.ErrStorage, err)
	}
	return r.store.Save(ctx, store.CollectionSettings, doc)
}
