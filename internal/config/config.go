package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported record store backends.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds runtime configuration values for the ledger service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	RedisURL       string
	RedisKeyPrefix string
	MemoryQuota    int
	NATSURL        string
	NATSSubject    string
	JWTSecret      string
	QRSessionTTL   time.Duration
	ScanBaseURL    string
	ScanRateLimit  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from LEDGER_* environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "School Ledger API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("sqlite.path", "ledger.db")
	v.SetDefault("redis.prefix", "ledger")
	v.SetDefault("memory.quota_bytes", 5*1024*1024)
	v.SetDefault("nats.subject", "ledger.checkins")
	v.SetDefault("qr.ttl", "15m")
	v.SetDefault("scan.base_url", "http://localhost:8080")
	v.SetDefault("scan.rate_limit", 30)

	ttl, err := time.ParseDuration(v.GetString("qr.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid qr session ttl: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("qr session ttl must be positive")
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("store.driver"))),
		DatabaseURL:    v.GetString("database.url"),
		SQLitePath:     v.GetString("sqlite.path"),
		RedisURL:       v.GetString("redis.url"),
		RedisKeyPrefix: v.GetString("redis.prefix"),
		MemoryQuota:    v.GetInt("memory.quota_bytes"),
		NATSURL:        v.GetString("nats.url"),
		NATSSubject:    v.GetString("nats.subject"),
		JWTSecret:      v.GetString("jwt.secret"),
		QRSessionTTL:   ttl,
		ScanBaseURL:    strings.TrimRight(v.GetString("scan.base_url"), "/"),
		ScanRateLimit:  v.GetInt("scan.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("database url is required for the postgres store")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url is required for the redis store")
		}
	default:
		return Config{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.ScanRateLimit <= 0 {
		cfg.ScanRateLimit = 30
	}

	return cfg, nil
}
