package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	DBDriver    string `env:"DB_DRIVER" default:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" default:"localhost"`
	DBPort      string `env:"DB_PORT" default:"5432"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" default:"pyra"`
	DBSSLMode   string `env:"DB_SSLMODE" default:"disable"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" default:"72h"`

	RedisURL    string        `env:"REDIS_URL"`
	VoteLockTTL time.Duration `env:"VOTE_LOCK_TTL" default:"5s"`

	HotDecay time.Duration `env:"HOT_DECAY" default:"12h30m"`

	CORSOrigins string `env:"CORS_ORIGINS" default:"*"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`
}

// Load reads an optional .env file (or the given files), then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
		slog.Debug("no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" && c.DBUser == "" {
			return errors.New("DATABASE_URL or DB_USER is required for postgres")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "pyra.db"
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}

	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET is required and must be at least 16 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.HotDecay <= 0 {
		return errors.New("HOT_DECAY must be positive")
	}
	if c.VoteLockTTL <= 0 {
		return errors.New("VOTE_LOCK_TTL must be positive")
	}
	return nil
}

// DSN returns DATABASE_URL, or a postgres DSN built from the DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
