package database

import (
	"context"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/config"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

func TestOpenStoreBackends(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	configs := map[string]config.Config{
		"memory": {StoreDriver: config.StoreMemory},
		"sqlite": {StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")},
		"redis":  {StoreDriver: config.StoreRedis, RedisURL: "redis://" + mini.Addr(), RedisKeyPrefix: "test"},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, closeFn, err := OpenStore(ctx, cfg, zerolog.Nop())
			require.NoError(t, err)
			defer func() { require.NoError(t, closeFn()) }()

			require.NoError(t, s.Save(ctx, store.CollectionClasses, []byte(`[{"id":"c1"}]`)))
			doc, err := s.Load(ctx, store.CollectionClasses)
			require.NoError(t, err)
			require.JSONEq(t, `[{"id":"c1"}]`, string(doc))
		})
	}
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), config.Config{StoreDriver: "mongo"}, zerolog.Nop())
	require.Error(t, err)
}
