// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the diocese site configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"DIOCESE_DB_PATH" envDefault:"./data/diocese.db"`
	SessionSecret string `env:"DIOCESE_SESSION_SECRET,required"`
	ServerHost    string `env:"DIOCESE_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"DIOCESE_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"DIOCESE_ENV" envDefault:"development"`
	LogLevel      string `env:"DIOCESE_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"DIOCESE_UPLOADS_DIR" envDefault:"./uploads"`
	SiteURL       string `env:"DIOCESE_SITE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration
	RedisURL     string `env:"DIOCESE_REDIS_URL"`                          // Optional Redis URL for shared role/settings cache
	CachePrefix  string `env:"DIOCESE_CACHE_PREFIX" envDefault:"diocese:"` // Redis key prefix
	CacheTTL     int    `env:"DIOCESE_CACHE_TTL" envDefault:"300"`         // Default cache TTL in seconds
	CacheMaxSize int    `env:"DIOCESE_CACHE_MAX_SIZE" envDefault:"10000"`  // Max memory cache entries

	// Front page widgets
	SliderInterval time.Duration `env:"DIOCESE_SLIDER_INTERVAL" envDefault:"5s"`
	SliderRefresh  string        `env:"DIOCESE_SLIDER_REFRESH" envDefault:"@every 1m"` // cron expression
	PopupDelay     time.Duration `env:"DIOCESE_POPUP_DELAY" envDefault:"0s"`

	// Bootstrap administrator, created on first start when both are set.
	AdminEmail    string `env:"DIOCESE_ADMIN_EMAIL"`
	AdminPassword string `env:"DIOCESE_ADMIN_PASSWORD"`

	DoSeed bool `env:"DIOCESE_DO_SEED" envDefault:"false"` // Seed sample content

	// Demo installs are wiped and reseeded on the first start after the interval.
	DemoMode          bool          `env:"DIOCESE_DEMO_MODE" envDefault:"false"`
	DemoResetInterval time.Duration `env:"DIOCESE_DEMO_RESET_INTERVAL" envDefault:"24h"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// SlogLevel maps LogLevel onto a slog level. Unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("DIOCESE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if c.SessionSecret == weak {
			return fmt.Errorf("DIOCESE_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("DIOCESE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if c.SliderInterval <= 0 {
		return fmt.Errorf("DIOCESE_SLIDER_INTERVAL must be positive, got %s", c.SliderInterval)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("DIOCESE_ADMIN_EMAIL and DIOCESE_ADMIN_PASSWORD must be set together")
	}

	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
