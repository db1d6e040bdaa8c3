package mtcflow

import (
	"github.com/ghalamif/mtcflow/internal/adapters/mtconnect"
	"github.com/ghalamif/mtcflow/internal/app/config"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// AgentConfig points at the MTConnect agent.
	AgentConfig = mtconnect.Config
	// StoreConfig selects and configures the downstream store.
	StoreConfig = config.StoreConfig
	// TimescaleConfig configures the direct TimescaleDB store.
	TimescaleConfig = config.TimescaleConfig
	// PollPolicy controls the poll interval and the failure back-off.
	PollPolicy = ports.PollPolicy
	// ExtractConfig adds multi-axis channel kinds.
	ExtractConfig = config.ExtractConfig
	// MultiAxisConfig describes one multi-axis channel kind.
	MultiAxisConfig = config.MultiAxisConfig
	// HTTPConfig configures the shared HTTP client.
	HTTPConfig = config.HTTPConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig sets the log level.
	LogConfig = config.LogConfig
)

// Store kinds accepted in store.kind.
const (
	StoreHTTP      = config.StoreHTTP
	StoreTimescale = config.StoreTimescale
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig loads YAML from disk using the internal config reader. An empty
// path yields DefaultConfig().
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
