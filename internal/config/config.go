// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor
// principles; a local .env file is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Menu sources.
const (
	MenuSourceStatic  = "static"
	MenuSourceCatalog = "catalog"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Key-value storage for users and the active session
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL"`
	DatabaseURL    string `env:"DATABASE_URL"`
	KVTable        string `env:"KV_TABLE" envDefault:"kv_store"`
	KVPrefix       string `env:"KV_PREFIX" envDefault:"foodflame:"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Menu
	MenuSource              string        `env:"MENU_SOURCE" envDefault:"static"`
	MenuMaxPages            int           `env:"MENU_MAX_PAGES" envDefault:"5"`
	CatalogBaseURL          string        `env:"CATALOG_BASE_URL" envDefault:"https://www.themealdb.com/api/json/v1/1"`
	CatalogCategories       []string      `env:"CATALOG_CATEGORIES" envDefault:"Beef,Chicken,Dessert,Pasta,Seafood" envSeparator:","`
	CatalogItemsPerCategory int           `env:"CATALOG_ITEMS_PER_CATEGORY" envDefault:"4"`
	CatalogCacheTTL         time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"10m"`
	CatalogMaxAttempts      int           `env:"CATALOG_MAX_ATTEMPTS" envDefault:"3"`

	// Rate limiting of login and password reset, per client IP
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.StorageBackend == StorageRedis || c.RedisURL != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when STORAGE_BACKEND=redis"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres"))
		}
		if c.KVTable == "" {
			errs = append(errs, errors.New("KV_TABLE must not be empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.MenuSource {
	case MenuSourceStatic:
	case MenuSourceCatalog:
		if u, err := url.Parse(c.CatalogBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid CATALOG_BASE_URL %q", c.CatalogBaseURL))
		}
		if len(c.CatalogCategories) == 0 {
			errs = append(errs, errors.New("CATALOG_CATEGORIES must not be empty"))
		}
		if c.CatalogMaxAttempts < 1 {
			errs = append(errs, errors.New("CATALOG_MAX_ATTEMPTS must be positive"))
		}
		if c.CatalogItemsPerCategory < 1 {
			errs = append(errs, errors.New("CATALOG_ITEMS_PER_CATEGORY must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MENU_SOURCE %q", c.MenuSource))
	}

	if c.MenuMaxPages < 1 {
		errs = append(errs, errors.New("MENU_MAX_PAGES must be positive"))
	}
	if c.RateLimitAuthEnabled && (c.RateLimitAuthRPS < 1 || c.RateLimitAuthBurst < 1) {
		errs = append(errs, errors.New("RATE_LIMIT_AUTH_RPS and RATE_LIMIT_AUTH_BURST must be positive"))
	}

	return errors.Join(errs...)
}

// Load reads an optional .env file, parses environment variables and
// validates the result. Variables already set in the environment win over
// the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
