// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the service configuration from LINGO_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/lingocms/internal/auth"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"change-me-to-a-32-byte-jwt-secret",
}

// Denylist modes.
const (
	DenylistDisabled = ""
	DenylistMemory   = "memory"
	DenylistRedis    = "redis"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"LINGO_DB_PATH" envDefault:"./data/lingocms.db"`
	SessionSecret string `env:"LINGO_SESSION_SECRET,required"`
	JWTSecret     string `env:"LINGO_JWT_SECRET,required"`
	JWTIssuer     string `env:"LINGO_JWT_ISSUER" envDefault:"lingocms"`
	ServerHost    string `env:"LINGO_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"LINGO_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"LINGO_ENV" envDefault:"development"`
	LogLevel      string `env:"LINGO_LOG_LEVEL" envDefault:"info"`
	TrustProxy    bool   `env:"LINGO_TRUST_PROXY" envDefault:"false"`

	// Token revocation
	RedisURL      string `env:"LINGO_REDIS_URL"`      // Redis denylist when set
	TokenDenylist string `env:"LINGO_TOKEN_DENYLIST"` // "memory" for a process-local denylist

	// GeoIP configuration
	GeoIPDBPath string `env:"LINGO_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Password hashing cost
	Argon2Time    uint32 `env:"LINGO_ARGON2_TIME" envDefault:"2"`
	Argon2Memory  uint32 `env:"LINGO_ARGON2_MEMORY" envDefault:"19456"` // KiB
	Argon2Threads uint8  `env:"LINGO_ARGON2_THREADS" envDefault:"1"`

	// Default superadmin, created when the accounts table is empty
	BootstrapUsername string `env:"LINGO_BOOTSTRAP_USERNAME" envDefault:"superadmin"`
	BootstrapEmail    string `env:"LINGO_BOOTSTRAP_EMAIL" envDefault:"superadmin@localhost.localdomain"`
	BootstrapPassword string `env:"LINGO_BOOTSTRAP_PASSWORD"`

	// Request protection
	LoginRate  float64 `env:"LINGO_LOGIN_RATE" envDefault:"0.5"` // login requests per second per IP
	LoginBurst int     `env:"LINGO_LOGIN_BURST" envDefault:"5"`
	APIRate    float64 `env:"LINGO_API_RATE" envDefault:"10"` // /auth requests per second per IP
	APIBurst   int     `env:"LINGO_API_BURST" envDefault:"30"`

	// Event log retention in days, 0 keeps events forever
	EventRetentionDays int `env:"LINGO_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// DenylistMode reports which token denylist to use. A Redis URL wins.
func (c Config) DenylistMode() string {
	if c.RedisURL != "" {
		return DenylistRedis
	}
	if c.TokenDenylist == DenylistMemory {
		return DenylistMemory
	}
	return DenylistDisabled
}

// Argon2Params returns the password hashing parameters.
func (c Config) Argon2Params() auth.Params {
	p := auth.DefaultParams()
	p.Time = c.Argon2Time
	p.Memory = c.Argon2Memory
	p.Threads = c.Argon2Threads
	return p
}

// EventRetention returns how long auth events are kept, or 0 to keep them.
func (c Config) EventRetention() time.Duration {
	if c.EventRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
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

// MinSecretLength is the minimum required length for the session and JWT secrets.
const MinSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := validateSecret("LINGO_SESSION_SECRET", cfg.SessionSecret); err != nil {
		return nil, err
	}
	if err := validateSecret("LINGO_JWT_SECRET", cfg.JWTSecret); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == cfg.JWTSecret {
		return nil, errors.New("LINGO_JWT_SECRET must differ from LINGO_SESSION_SECRET")
	}

	switch cfg.TokenDenylist {
	case DenylistDisabled, DenylistMemory:
	case DenylistRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("LINGO_TOKEN_DENYLIST=redis requires LINGO_REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("LINGO_TOKEN_DENYLIST must be empty, %q or %q, got %q",
			DenylistMemory, DenylistRedis, cfg.TokenDenylist)
	}

	if err := cfg.Argon2Params().Validate(); err != nil {
		return nil, fmt.Errorf("invalid argon2 parameters: %w", err)
	}
	return cfg, nil
}

// validateSecret enforces length, rejects known defaults and warns about
// low-entropy values.
func validateSecret(name, secret string) error {
	if len(secret) < MinSecretLength {
		return fmt.Errorf("%s must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			name, MinSecretLength, len(secret))
	}

	for _, weak := range knownWeakSecrets {
		if secret == weak {
			return fmt.Errorf("%s is a known default value and must not be used; "+
				"generate a secure secret with: openssl rand -base64 32", name)
		}
	}

	if !hasMinimumEntropy(secret) {
		slog.Warn(name + " has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
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
