package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values are layered: built-in defaults, then the config file, then
// POSADMIN_* environment variables and flags.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// BackendConfig points at the POS backend.
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`

	// RequestsPerSecond paces outgoing calls; zero disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`

	UserAgent string `mapstructure:"user_agent"`
}

// ThrottleConfig tunes the login lockout.
type ThrottleConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	LockoutDuration time.Duration `mapstructure:"lockout_duration"`
	TickInterval    time.Duration `mapstructure:"tick_interval"`
}

// OutputConfig holds listing defaults.
type OutputConfig struct {
	// Format is one of table, json, markdown, csv, html, yaml.
	Format   string `mapstructure:"format"`
	PageSize int    `mapstructure:"page_size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}
