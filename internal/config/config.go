package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverLibSQL    = "libsql"
	DriverFirestore = "firestore"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	StoreDriver           string `env:"STORE_DRIVER" envDefault:"libsql"`
	DBPath                string `env:"DB_PATH" envDefault:"data/zambara.db"`
	FirestoreProjectID    string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreEmulatorHost string `env:"FIRESTORE_EMULATOR_HOST"`

	// RedisURL switches admin sessions to Redis when set.
	RedisURL string `env:"REDIS_URL"`

	AdminEmail        string        `env:"ADMIN_EMAIL" envDefault:"admin@zambara.in"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH" envDefault:"$2a$10$trCdqP4npsbw0R1vQxVwXeT1HebzRmP01SXaNGPz1eSAZ7mpcL0Uu"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	SeedDemo bool `env:"SEED_DEMO" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverLibSQL:
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the libsql driver")
		}
	case DriverFirestore:
		if c.FirestoreProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID is required for the firestore driver")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverLibSQL, DriverFirestore, c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
