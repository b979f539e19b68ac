// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from ZEN_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver   string `env:"ZEN_DB_DRIVER" envDefault:"sqlite"`
	DBDSN      string `env:"ZEN_DB_DSN" envDefault:"./data/zen.db"`
	ServerHost string `env:"ZEN_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"ZEN_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"ZEN_ENV" envDefault:"development"`
	LogLevel   string `env:"ZEN_LOG_LEVEL" envDefault:"info"`

	RequestTimeout  time.Duration `env:"ZEN_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"ZEN_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Cache configuration
	RedisURL     string        `env:"ZEN_REDIS_URL"` // Optional Redis URL for distributed caching
	CachePrefix  string        `env:"ZEN_CACHE_PREFIX" envDefault:"zen:"`
	CacheTTL     time.Duration `env:"ZEN_CACHE_TTL" envDefault:"1h"`
	CacheMaxSize int           `env:"ZEN_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Admin write rate limiting, per client IP
	RateLimit float64 `env:"ZEN_RATE_LIMIT" envDefault:"10"` // requests per second
	RateBurst int     `env:"ZEN_RATE_BURST" envDefault:"20"`

	EventRetention time.Duration `env:"ZEN_EVENT_RETENTION" envDefault:"720h"`

	// Seeding configuration
	DoSeed   bool   `env:"ZEN_DO_SEED" envDefault:"false"`
	SeedFile string `env:"ZEN_SEED_FILE"` // YAML file; the default menus are seeded when empty
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

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	return level
}

// ParseLogLevel accepts debug, info, warn/warning and error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the application cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("ZEN_DB_DRIVER must be sqlite or mysql, got %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("ZEN_DB_DSN must not be empty")
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("ZEN_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("ZEN_LOG_LEVEL: %w", err)
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("ZEN_RATE_LIMIT and ZEN_RATE_BURST must be positive")
	}
	if c.EventRetention < time.Hour {
		return fmt.Errorf("ZEN_EVENT_RETENTION must be at least 1h, got %s", c.EventRetention)
	}
	return nil
}
