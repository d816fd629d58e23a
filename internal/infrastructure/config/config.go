// Package config loads process settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMemory  = "memory"
	BackendJSONBin = "jsonbin"
	BackendMongo   = "mongo"
	BackendRedis   = "redis"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	Ledger LedgerConfig
	Store  StoreConfig

	JSONBin JSONBinConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type LedgerConfig struct {
	// Timezone is used for day boundaries in reports and for reading
	// timestamps written without an offset.
	Timezone          string  `env:"LEDGER_TIMEZONE,     default=UTC"`
	BootstrapAdminID  int64   `env:"BOOTSTRAP_ADMIN_ID"`
	DefaultAccessDays int     `env:"DEFAULT_ACCESS_DAYS, default=30"`
	LTVMultiplier     float64 `env:"LTV_MULTIPLIER,      default=3"`
}

type StoreConfig struct {
	Backend        string        `env:"STORE_BACKEND,      default=memory"`
	MaxAttempts    uint          `env:"STORE_MAX_ATTEMPTS, default=5"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL,    default=24h"`
}

type JSONBinConfig struct {
	BaseURL   string        `env:"JSONBIN_BASE_URL,   default=https://api.jsonbin.io/v3/b"`
	BinID     string        `env:"JSONBIN_BIN_ID"`
	MasterKey string        `env:"JSONBIN_MASTER_KEY"`
	Timeout   time.Duration `env:"JSONBIN_TIMEOUT,    default=10s"`
}

type MongoConfig struct {
	URI        string        `env:"MONGO_URI,         default=mongodb://localhost:27017"`
	Database   string        `env:"MONGO_DB,          default=bookkeeper"`
	DocumentID string        `env:"MONGO_DOCUMENT_ID, default=ledger"`
	Timeout    time.Duration `env:"MONGO_TIMEOUT,     default=10s"`
}

type RedisConfig struct {
	// Addr empty disables Redis for idempotency keys unless it is the store backend.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,     default=0"`
	Prefix   string        `env:"REDIS_PREFIX, default=bookkeeper:ledger"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig
// and checks the settings each backend needs.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports missing or contradictory settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendMongo:
	case BackendJSONBin:
		if c.JSONBin.BinID == "" || c.JSONBin.MasterKey == "" {
			return fmt.Errorf("config: JSONBIN_BIN_ID and JSONBIN_MASTER_KEY are required for the jsonbin backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Store.MaxAttempts == 0 {
		return fmt.Errorf("config: STORE_MAX_ATTEMPTS must be at least 1")
	}
	if _, err := time.LoadLocation(c.Ledger.Timezone); err != nil {
		return fmt.Errorf("config: LEDGER_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the ledger time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsDevelopment enables pretty console logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
