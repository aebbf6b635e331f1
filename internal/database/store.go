package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/school-ledger-api/internal/config"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// OpenStore builds the record store backend selected by the configuration. The returned
// close func releases the underlying connection.
func OpenStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreMemory, "":
		logger.Warn().Int("quota_bytes", cfg.MemoryQuota).Msg("using in-memory record store, data is lost on restart")
		return store.NewMemoryStore(cfg.MemoryQuota), noop, nil
	case config.StoreSQLite:
		db, err := ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return gormStore(ctx, db)
	case config.StorePostgres:
		db, err := ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return gormStore(ctx, db)
	case config.StoreRedis:
		client, err := ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client, cfg.RedisKeyPrefix), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func gormStore(ctx context.Context, db *gorm.DB) (store.Store, func() error, error) {
	s := store.NewGormStore(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate stored documents: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return s, sqlDB.Close, nil
}
