// Package config loads the YAML-backed configuration for clenginectl,
// following the shape of the teacher's configs/config.go: a flat YAML
// struct plus conversion helpers into the domain-shaped config each
// subsystem actually wants.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of config.yml.
type Config struct {
	Feed       FeedYAML       `yaml:"feed"`
	Database   DatabaseYAML   `yaml:"database"`
	Vault      VaultYAML      `yaml:"vault"`
	Ingestion  IngestionYAML  `yaml:"ingestion"`
	Pipeline   PipelineYAML   `yaml:"pipeline"`
	IndicatorSet IndicatorSetYAML `yaml:"indicator_set"`
}

type FeedYAML struct {
	BaseURL string `yaml:"base_url"`
}

// DatabaseYAML carries the DSN shape. Password is read from the
// DB_PASSWORD env var rather than the file, matching the teacher's
// split of secrets (private key) away from config.yml.
type DatabaseYAML struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Name   string `yaml:"name"`
	Params string `yaml:"params"`
}

type VaultYAML struct {
	BaseURL    string `yaml:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type IngestionYAML struct {
	Symbol       string `yaml:"symbol"`
	Interval     string `yaml:"interval"`
	QueueDepth   int    `yaml:"queue_depth"`
	PingSec      int    `yaml:"ping_sec"`
	HandshakeSec int    `yaml:"handshake_sec"`
}

type PipelineYAML struct {
	MaxRetries     int     `yaml:"max_retries"`
	BaseBackoffSec float64 `yaml:"base_backoff_sec"`
	BatchSize      int     `yaml:"batch_size"`
	PollIntervalMs int     `yaml:"poll_interval_ms"`
}

type IndicatorSetYAML struct {
	EMAFast   int `yaml:"ema_fast"`
	EMASlow   int `yaml:"ema_slow"`
	ATRWindow int `yaml:"atr_window"`
}

// LoadConfig reads and parses path into a Config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// DSN builds the MySQL DSN expected by gorm.io/driver/mysql, reading
// the password from DB_PASSWORD since it is never written to disk.
func (c *Config) DSN() string {
	pw := os.Getenv("DB_PASSWORD")
	params := c.Database.Params
	if params == "" {
		params = "charset=utf8mb4&parseTime=True&loc=Local"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User, pw, c.Database.Host, c.Database.Port, c.Database.Name, params)
}

// VaultTimeout converts the configured façade timeout to a Duration,
// defaulting to 10s when unset.
func (c *Config) VaultTimeout() time.Duration {
	if c.Vault.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Vault.TimeoutSec) * time.Second
}

// BaseBackoff converts the configured pipeline backoff to a Duration,
// defaulting to 1s when unset.
func (c *Config) BaseBackoff() time.Duration {
	if c.Pipeline.BaseBackoffSec <= 0 {
		return time.Second
	}
	return time.Duration(c.Pipeline.BaseBackoffSec * float64(time.Second))
}

// MaxRetries defaults to 3 when unset or non-positive.
func (c *Config) MaxRetries() int {
	if c.Pipeline.MaxRetries <= 0 {
		return 3
	}
	return c.Pipeline.MaxRetries
}

// BatchSize defaults to 50 when unset or non-positive.
func (c *Config) BatchSize() int {
	if c.Pipeline.BatchSize <= 0 {
		return 50
	}
	return c.Pipeline.BatchSize
}

// PollInterval defaults to 5s when unset or non-positive.
func (c *Config) PollInterval() time.Duration {
	if c.Pipeline.PollIntervalMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Pipeline.PollIntervalMs) * time.Millisecond
}
