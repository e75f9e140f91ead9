// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevSessionSecret signs tokens when SESSION_SECRET is unset and BAZAAR_DEV
// is true. It is public, so it is refused outside development mode.
const DevSessionSecret = "dev-insecure-secret"

// Config is the service configuration.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"bazaar.db"`

	// Dev allows the well-known DevSessionSecret. Never enable it in production.
	Dev bool `env:"BAZAAR_DEV" envDefault:"false"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies bool          `env:"COOKIE_SECURE" envDefault:"false"`

	AdminEmail    string `env:"BAZAAR_ADMIN_EMAIL"`
	AdminPassword string `env:"BAZAAR_ADMIN_PASSWORD"`
	AdminName     string `env:"BAZAAR_ADMIN_NAME" envDefault:"Administrator"`

	SeedCategories []string `env:"BAZAAR_SEED_CATEGORIES" envSeparator:","`

	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`

	JobWorkers int `env:"JOB_WORKERS" envDefault:"2"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SeedCategories = trimNames(cfg.SeedCategories)
	if cfg.SessionSecret == "" && cfg.Dev {
		cfg.SessionSecret = DevSessionSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch {
	case c.SessionSecret == "":
		errs = append(errs, errors.New("SESSION_SECRET is required (BAZAAR_DEV=true selects a development secret)"))
	case c.SessionSecret == DevSessionSecret && !c.Dev:
		errs = append(errs, errors.New("SESSION_SECRET must not be the development secret unless BAZAAR_DEV=true"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateBurst < 1 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_BURST must be positive"))
	}
	if c.JobWorkers < 1 {
		errs = append(errs, fmt.Errorf("JOB_WORKERS must be at least 1, got %d", c.JobWorkers))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("BAZAAR_ADMIN_EMAIL and BAZAAR_ADMIN_PASSWORD must be set together"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// BootstrapAdmin reports whether an initial admin should be ensured.
func (c Config) BootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// InsecureSecret reports whether tokens are signed with the development secret.
func (c Config) InsecureSecret() bool {
	return c.SessionSecret == DevSessionSecret
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func trimNames(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
