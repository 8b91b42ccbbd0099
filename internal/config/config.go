// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from AGENCY_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"AGENCY_DB_PATH" envDefault:"./data/agencyhub.db"`
	SessionSecret string `env:"AGENCY_SESSION_SECRET,required"`
	ServerHost    string `env:"AGENCY_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"AGENCY_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"AGENCY_ENV" envDefault:"development"`
	LogLevel      string `env:"AGENCY_LOG_LEVEL" envDefault:"info"`

	// Cache configuration
	RedisURL     string `env:"AGENCY_REDIS_URL"`                            // Optional Redis URL for shared caching
	CachePrefix  string `env:"AGENCY_CACHE_PREFIX" envDefault:"agencyhub:"` // Redis key prefix
	CacheTTL     int    `env:"AGENCY_CACHE_TTL" envDefault:"3600"`          // Render cache TTL in seconds
	CacheMaxSize int    `env:"AGENCY_CACHE_MAX_SIZE" envDefault:"10000"`    // Max memory cache entries

	// Publishing
	PreviewTTLHours   int  `env:"AGENCY_PREVIEW_TTL_HOURS" envDefault:"24"`
	StrictPagePublish bool `env:"AGENCY_STRICT_PAGE_PUBLISH" envDefault:"false"`

	// Background work
	WebhookWorkers        int `env:"AGENCY_WEBHOOK_WORKERS" envDefault:"3"`
	ActivityRetentionDays int `env:"AGENCY_ACTIVITY_RETENTION_DAYS" envDefault:"90"`

	// HTTP
	RequestTimeout time.Duration `env:"AGENCY_REQUEST_TIMEOUT" envDefault:"30s"`
	APIRateLimit   float64       `env:"AGENCY_API_RATE_LIMIT" envDefault:"10"` // requests per second per client
	APIRateBurst   int           `env:"AGENCY_API_RATE_BURST" envDefault:"30"`

	// Seeding configuration
	DoSeed bool `env:"AGENCY_DO_SEED" envDefault:"false"` // Load the demo fixture into an empty database
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

// CacheTTLDuration returns the render cache TTL.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// PreviewTTL returns the lifetime of new preview tokens.
func (c Config) PreviewTTL() time.Duration {
	return time.Duration(c.PreviewTTLHours) * time.Hour
}

// ActivityRetention returns how long activity log entries are kept.
func (c Config) ActivityRetention() time.Duration {
	return time.Duration(c.ActivityRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
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

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("AGENCY_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("AGENCY_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.PreviewTTLHours <= 0 {
		return nil, fmt.Errorf("AGENCY_PREVIEW_TTL_HOURS must be positive, got %d", cfg.PreviewTTLHours)
	}
	if cfg.WebhookWorkers <= 0 {
		return nil, fmt.Errorf("AGENCY_WEBHOOK_WORKERS must be positive, got %d", cfg.WebhookWorkers)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("AGENCY_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("AGENCY_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
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
