// Package config provides configuration domain models.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/whhaicheng/DB-Showdown/internal/domain/connection"
)

var (
	// ErrInvalidConfiguration is returned when configuration is invalid.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// PlaceholderPassword is the fallback password of both backends when none is
// configured. It only exists so the demo starts against local containers.
const PlaceholderPassword = "YourStrong!Passw0rd"

// KeyMode selects how point-lookup keys are drawn for the two backends.
type KeyMode string

const (
	// KeyModeIndependent draws a fresh key for each backend invocation.
	KeyModeIndependent KeyMode = "independent"
	// KeyModeShared draws one key per run and reuses it for both backends.
	KeyModeShared KeyMode = "shared"
)

// Validate checks if the key mode is valid.
func (m KeyMode) Validate() error {
	switch m {
	case KeyModeIndependent, KeyModeShared:
		return nil
	default:
		return fmt.Errorf("%w: unknown key mode: %s", ErrInvalidConfiguration, m)
	}
}

// BenchmarkConfig configures the scenario runner.
type BenchmarkConfig struct {
	// MaxOrderID is N, the upper bound of the loaded primary-key domain [1, N].
	MaxOrderID int64 `json:"max_order_id"`

	// KeyMode selects independent or shared point-lookup keys.
	KeyMode KeyMode `json:"key_mode"`

	// CallTimeout bounds every backend call (connect + execute, or an admin batch).
	CallTimeout time.Duration `json:"call_timeout"`

	// Parallel measures both backends concurrently instead of row-store first.
	Parallel bool `json:"parallel"`

	// Seed seeds key selection. Zero means time-based.
	Seed int64 `json:"seed"`
}

// Validate validates the benchmark configuration.
func (c *BenchmarkConfig) Validate() error {
	if c.MaxOrderID < 1 {
		return fmt.Errorf("%w: max_order_id must be at least 1", ErrInvalidConfiguration)
	}
	if err := c.KeyMode.Validate(); err != nil {
		return err
	}
	if c.CallTimeout <= 0 {
		return fmt.Errorf("%w: call_timeout must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// ProvisionConfig configures the one-shot data load.
type ProvisionConfig struct {
	// Rows is the number of synthetic orders to generate.
	Rows int64 `json:"rows"`

	// ChunkSize is the number of rows sent per bulk insert.
	ChunkSize int `json:"chunk_size"`

	// WaitAttempts is the retry budget while waiting for a backend at cold start.
	WaitAttempts uint `json:"wait_attempts"`

	// WaitDelay is the fixed backoff between attempts.
	WaitDelay time.Duration `json:"wait_delay"`

	// Seed seeds data generation. Zero means time-based.
	Seed int64 `json:"seed"`
}

// Validate validates the provisioning configuration.
func (c *ProvisionConfig) Validate() error {
	if c.Rows < 1 {
		return fmt.Errorf("%w: rows must be at least 1", ErrInvalidConfiguration)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be at least 1", ErrInvalidConfiguration)
	}
	if c.WaitAttempts < 1 {
		return fmt.Errorf("%w: wait_attempts must be at least 1", ErrInvalidConfiguration)
	}
	if c.WaitDelay < 0 {
		return fmt.Errorf("%w: wait_delay cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}

// LogConfig configures logging.
type LogConfig struct {
	// Dir is the directory for dated log files.
	Dir string `json:"dir"`

	// Level is the logging level (debug, info, warn, error).
	Level string `json:"level"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Level] {
		return fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfiguration, c.Level)
	}
	if c.Dir == "" {
		return fmt.Errorf("%w: log dir is required", ErrInvalidConfiguration)
	}
	return nil
}

// Config represents the complete application configuration.
type Config struct {
	SQLServer  connection.SQLServerConnection  `json:"sqlserver"`
	ClickHouse connection.ClickHouseConnection `json:"clickhouse"`
	Benchmark  BenchmarkConfig                 `json:"benchmark"`
	Provision  ProvisionConfig                 `json:"provision"`
	Log        LogConfig                       `json:"log"`

	// ExportDir is where session reports are written.
	ExportDir string `json:"export_dir"`

	// MetricsAddr is the listen address of the Prometheus endpoint. Empty disables it.
	MetricsAddr string `json:"metrics_addr,omitempty"`
}

// Validate validates the complete configuration.
func (c *Config) Validate() error {
	for _, nc := range c.Connections() {
		if err := nc.Conn.Validate(); err != nil {
			return fmt.Errorf("%s: %w", nc.Name, err)
		}
	}
	if err := c.Benchmark.Validate(); err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}
	if err := c.Provision.Validate(); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.ExportDir == "" {
		return fmt.Errorf("%w: export_dir is required", ErrInvalidConfiguration)
	}
	return nil
}

// NamedConnection pairs a backend's connection parameters with its config section name.
type NamedConnection struct {
	Name string
	Conn connection.Connection
}

// Connections returns the connection parameters of every backend in measurement order.
func (c *Config) Connections() []NamedConnection {
	return []NamedConnection{
		{Name: "sqlserver", Conn: &c.SQLServer},
		{Name: "clickhouse", Conn: &c.ClickHouse},
	}
}

// UsesPlaceholderPassword reports whether either backend still runs with the
// built-in fallback password.
func (c *Config) UsesPlaceholderPassword() bool {
	return c.SQLServer.Password == PlaceholderPassword || c.ClickHouse.Password == PlaceholderPassword
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		SQLServer: connection.SQLServerConnection{
			Host:                   "localhost",
			Port:                   1433,
			Database:               "DemoDB",
			Username:               "sa",
			Password:               PlaceholderPassword,
			TrustServerCertificate: true,
		},
		ClickHouse: connection.ClickHouseConnection{
			Host:        "localhost",
			Port:        9000,
			Database:    "DemoDB",
			Username:    "default",
			Password:    PlaceholderPassword,
			DialTimeout: 5 * time.Second,
		},
		Benchmark: BenchmarkConfig{
			MaxOrderID:  2_000_000,
			KeyMode:     KeyModeIndependent,
			CallTimeout: 60 * time.Second,
		},
		Provision: ProvisionConfig{
			Rows:         2_000_000,
			ChunkSize:    100_000,
			WaitAttempts: 10,
			WaitDelay:    5 * time.Second,
		},
		Log: LogConfig{
			Dir:   "./data/logs",
			Level: "info",
		},
		ExportDir: "./exports",
	}
}
