package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LEDGER_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 15*time.Minute, cfg.QRSessionTTL)
	require.Equal(t, "ledger.checkins", cfg.NATSSubject)
	require.Equal(t, 30, cfg.ScanRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEDGER_JWT_SECRET", "secret")
	t.Setenv("LEDGER_STORE_DRIVER", "Redis")
	t.Setenv("LEDGER_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LEDGER_QR_TTL", "5m")
	t.Setenv("LEDGER_SCAN_BASE_URL", "https://school.example.com/")
	t.Setenv("LEDGER_APP_PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreRedis, cfg.StoreDriver)
	require.Equal(t, 5*time.Minute, cfg.QRSessionTTL)
	require.Equal(t, "https://school.example.com", cfg.ScanBaseURL)
	require.Equal(t, ":9090", cfg.HTTPAddress())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("LEDGER_JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("LEDGER_JWT_SECRET", "secret")
		t.Setenv("LEDGER_STORE_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("LEDGER_JWT_SECRET", "secret")
		t.Setenv("LEDGER_STORE_DRIVER", "postgres")
		t.Setenv("LEDGER_DATABASE_URL", "")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("LEDGER_JWT_SECRET", "secret")
		t.Setenv("LEDGER_QR_TTL", "soon")
		_, err := Load()
		require.Error(t, err)
	})
}
