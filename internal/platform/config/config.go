// Copyright (c) 2026 Roastlog. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/roastlog/roastlog/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Roastlog API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// StorageDriver selects the user store backend: "memory" (default,
	// seeded mock for local development) or "postgres".
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`

	// Relational Database (PostgreSQL). Required only for the postgres driver.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// RateLimitDriver selects the registration limiter backend: "memory"
	// (default, single instance) or "redis" (shared across instances).
	RateLimitDriver string `env:"RATE_LIMIT_DRIVER" envDefault:"memory"`

	// Key-Value Cache (Redis). Required only for the redis limiter driver.
	RedisURL string `env:"REDIS_URL"`

	// CSRFSecret is the HMAC key used to sign issued CSRF tokens.
	CSRFSecret string `env:"CSRF_SECRET,required"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Cross-field requirements depend on the selected drivers.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate enforces driver-conditional requirements.
func (c *Config) validate() error {
	switch c.StorageDriver {
	case constants.DriverMemory:
	case constants.DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.RateLimitDriver {
	case constants.DriverMemory:
	case constants.DriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: REDIS_URL is required when RATE_LIMIT_DRIVER=redis")
		}
	default:
		return fmt.Errorf("config: unknown RATE_LIMIT_DRIVER %q", c.RateLimitDriver)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedExtraOrigins returns the additional CORS origins configured via
// EXTRA_ORIGINS (comma-separated).
func (c *Config) AllowedExtraOrigins() []string {
	if c.ExtraOrigins == "" {
		return nil
	}
	parts := strings.Split(c.ExtraOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
