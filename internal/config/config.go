// Package config loads the server configuration from environment variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Store backends.
const (
	StorePostgres  = "postgres"
	StorePostgrest = "postgrest"
	StoreMemory    = "memory"
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          string `env:"PORT" envDefault:"5432"`
	User          string `env:"USER" envDefault:"facility_user"`
	Password      string `env:"PASSWORD" envDefault:"facility_password"`
	Name          string `env:"NAME" envDefault:"facility_dashboard_db"`
	SSLMode       string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns  int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// DSN returns the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// PostgrestConfig locates a hosted PostgREST (Supabase) table store.
type PostgrestConfig struct {
	URL     string        `env:"URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// Config is the full server configuration.
type Config struct {
	Port               string          `env:"PORT" envDefault:"8080"`
	StoreBackend       string          `env:"STORE_BACKEND" envDefault:"postgres"`
	Database           DatabaseConfig  `envPrefix:"DB_"`
	Postgrest          PostgrestConfig `envPrefix:"POSTGREST_"`
	CORSAllowedOrigins []string        `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	AdminPassphrase     string        `env:"ADMIN_PASSPHRASE"`
	AdminPassphraseHash string        `env:"ADMIN_PASSPHRASE_HASH"`
	JWTSecret           string        `env:"JWT_SECRET"`
	JWTTTL              time.Duration `env:"JWT_TTL" envDefault:"12h"`

	Timezone  string `env:"APP_TIMEZONE" envDefault:"Asia/Seoul"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// JWTSecretGenerated is set when no JWT_SECRET was configured and a
	// random one was generated. Tokens then do not survive a restart.
	JWTSecretGenerated bool

	location *time.Location
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.JWTSecretGenerated = true
	}
	return cfg, nil
}

// Validate checks backend specific requirements and resolves the time zone.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case StorePostgres, StoreMemory:
	case StorePostgrest:
		if strings.TrimSpace(c.Postgrest.URL) == "" {
			errs = append(errs, errors.New("POSTGREST_URL is required when STORE_BACKEND=postgrest"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of postgres, postgrest, memory, got %q", c.StoreBackend))
	}
	if c.AdminPassphrase == "" && c.AdminPassphraseHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSPHRASE or ADMIN_PASSPHRASE_HASH must be set"))
	}
	if !slices.Contains([]string{"console", "json"}, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	} else {
		c.location = loc
	}
	return errors.Join(errs...)
}

// Location returns the facility's time zone. Dates are calendar days there.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// PassphraseHash returns the bcrypt hash of the admin passphrase, hashing the
// plain text passphrase when no hash is configured.
func (c *Config) PassphraseHash() ([]byte, error) {
	if c.AdminPassphraseHash != "" {
		if _, err := bcrypt.Cost([]byte(c.AdminPassphraseHash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSPHRASE_HASH is not a bcrypt hash: %w", err)
		}
		return []byte(c.AdminPassphraseHash), nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.AdminPassphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin passphrase: %w", err)
	}
	return hash, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
