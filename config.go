package cnclog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the row-store backend.
type StoreConfig struct {
	// Driver is one of "memory", "sqlite", "postgres".
	Driver string `yaml:"driver"`

	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`

	// DSN is the connection string for the postgres driver.
	DSN string `yaml:"dsn"`
}

// Config holds the service configuration loaded by cmd/cnclogd.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// Timezone is the IANA zone the factory calendar runs in.
	Timezone string `yaml:"timezone"`

	Store StoreConfig `yaml:"store"`

	// CacheTTL bounds how stale the dashboard read surface may be.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// SweepSchedule is the cron expression for the overtime cutoff sweep.
	SweepSchedule string `yaml:"sweep_schedule"`

	// NonQuantified lists process names closed without fg/ng/rework counts.
	NonQuantified []string `yaml:"non_quantified_processes"`

	// CustomWorkEnd overrides the end of the last working window per process
	// name, as "HH:MM".
	CustomWorkEnd map[string]string `yaml:"custom_work_end"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Listen:        ":8080",
		LogLevel:      "info",
		Timezone:      "Asia/Bangkok",
		Store:         StoreConfig{Driver: "memory"},
		CacheTTL:      3 * time.Second,
		SweepSchedule: "30 22 * * *",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns DefaultConfig unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cnclog: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cnclog: parse config: %w", err)
	}
	return cfg, nil
}
