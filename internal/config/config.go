// Package config loads application configuration from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Environment string `yaml:"environment"`
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`

	// SnowflakeNode distinguishes id generators across replicas.
	SnowflakeNode int64 `yaml:"snowflake_node"`

	Ingest IngestConfig `yaml:"ingest"`
}

// IngestConfig holds the default batch tuning; per-request values override it.
type IngestConfig struct {
	BatchSize      int `yaml:"batch_size"`
	MaxConcurrency int `yaml:"max_concurrency"`
	RetryAttempts  int `yaml:"retry_attempts"`
	RetryDelayMs   int `yaml:"retry_delay_ms"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Environment:   "development",
		HTTPAddr:      ":8080",
		DatabaseURL:   "postgres://localhost:5432/royaltyflow?sslmode=disable",
		SnowflakeNode: 1,
		Ingest: IngestConfig{
			BatchSize:      500,
			MaxConcurrency: 3,
			RetryAttempts:  3,
			RetryDelayMs:   1000,
		},
	}
}

// Load reads the file named by ROYALTYFLOW_CONFIG if set, then applies
// environment overrides on top of the defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("ROYALTYFLOW_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if v := os.Getenv("ROYALTYFLOW_ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}
	if v := os.Getenv("ROYALTYFLOW_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ROYALTYFLOW_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ROYALTYFLOW_SNOWFLAKE_NODE"); v != "" {
		node, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse ROYALTYFLOW_SNOWFLAKE_NODE: %w", err)
		}
		cfg.SnowflakeNode = node
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with production settings.
func (c Config) IsProduction() bool { return c.Environment == "production" }

var Module = fx.Module("config",
	fx.Provide(Load),
)
