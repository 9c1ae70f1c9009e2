// Ladle - Social Recipe Sharing Platform
// Copyright 2026 Chris K. (ckarenz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ckarenz/ladle

// Package config loads application configuration with koanf.
//
// Loading order, later layers override earlier ones:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or LADLE_CONFIG_PATH)
//  3. Environment variables with the LADLE_ prefix
//     (LADLE_SERVER_PORT -> server.port)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/ckarenz/ladle/internal/cache"
	"github.com/ckarenz/ladle/internal/logging"
	"github.com/ckarenz/ladle/internal/ranking"
	"github.com/ckarenz/ladle/internal/store"
)

// EnvPrefix namespaces all environment variables.
const EnvPrefix = "LADLE_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "LADLE_CONFIG_PATH"

// DefaultConfigPaths are searched in order; the first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ladle/config.yaml",
}

// Config is the application configuration tree.
type Config struct {
	Server      ServerConfig   `koanf:"server"`
	Database    store.Config   `koanf:"database"`
	Ranking     ranking.Config `koanf:"ranking"`
	SearchCache cache.Config   `koanf:"search_cache"`
	Trend       TrendConfig    `koanf:"trend"`
	Logging     logging.Config `koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port" validate:"gt=0,lte=65535"`

	// Timeout bounds request handling end to end.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimitReqs per RateLimitWindow per client IP; 0 disables.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// TrendConfig drives the background trend refresh job.
type TrendConfig struct {
	// Enabled toggles the job; a deployment running the refresh elsewhere
	// turns it off.
	Enabled bool `koanf:"enabled"`

	// Interval between refreshes.
	Interval time.Duration `koanf:"interval" validate:"omitempty,gt=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Database: store.DefaultConfig(),
		Ranking:  ranking.DefaultConfig(),
		SearchCache: cache.Config{
			TTL:        2 * time.Minute,
			Jitter:     15 * time.Second,
			MaxEntries: 4096,
		},
		Trend: TrendConfig{
			Enabled:  true,
			Interval: 10 * time.Minute,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, file, and environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// envTransform maps LADLE_SERVER_PORT to server.port. Only the first
// underscore becomes a separator level; the rest join the leaf key, so
// LADLE_RANKING_DEFAULT_PAGE_SIZE resolves via the known section names.
func envTransform(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)

	for _, section := range []string{
		"server", "database", "ranking", "search_cache", "trend", "logging",
	} {
		prefix := section + "_"
		if strings.HasPrefix(s, prefix) {
			return section + "." + strings.TrimPrefix(s, prefix)
		}
	}
	return s
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var validate = validator.New()

// Validate checks the whole tree, including the ranking weight sets.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if err := c.Ranking.Validate(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if c.Trend.Enabled && c.Trend.Interval <= 0 {
		return fmt.Errorf("trend.interval must be positive when the job is enabled")
	}
	return nil
}
