package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ghalamif/mtcflow/internal/adapters/mtconnect"
	"github.com/ghalamif/mtcflow/internal/adapters/sink"
	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

const (
	StoreHTTP      = "http"
	StoreTimescale = "timescale"
)

type Config struct {
	Agent   mtconnect.Config `yaml:"agent"`
	Store   StoreConfig      `yaml:"store"`
	Poll    ports.PollPolicy `yaml:"poll"`
	Extract ExtractConfig    `yaml:"extract"`
	HTTP    HTTPConfig       `yaml:"http"`
	Metrics MetricsConfig    `yaml:"metrics"`
	Log     LogConfig        `yaml:"log"`
}

type StoreConfig struct {
	Kind      string          `yaml:"kind"`
	BaseURL   string          `yaml:"base_url"`
	Timescale TimescaleConfig `yaml:"timescale"`
}

type TimescaleConfig struct {
	ConnString string               `yaml:"conn_string"`
	Tables     sink.TimescaleTables `yaml:"tables"`
}

// ExtractConfig adds multi-axis channel kinds on top of the built-in
// PathPosition.
type ExtractConfig struct {
	MultiAxis []MultiAxisConfig `yaml:"multi_axis"`
}

type MultiAxisConfig struct {
	Kind string   `yaml:"kind"`
	Axes []string `yaml:"axes"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig enables the Prometheus scrape endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration: the NIST test bed agent, a
// storage service on localhost:3000 and a five second interval.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads YAML from path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Agent.ApplyDefaults()

	if c.Store.Kind == "" {
		c.Store.Kind = StoreHTTP
	}
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = sink.DefaultBaseURL
	}
	c.Store.Timescale.Tables.ApplyDefaults()

	if c.Poll.Interval == 0 {
		c.Poll.Interval = 5 * time.Second
	}
	if c.Poll.MaxFailureBackoff == 0 {
		c.Poll.MaxFailureBackoff = c.Poll.Interval
	}
	if c.Poll.BackoffMultiplier == 0 {
		c.Poll.BackoffMultiplier = 2
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent config: %w", err)
	}
	switch c.Store.Kind {
	case StoreHTTP:
		if c.Store.BaseURL == "" {
			return errors.New("store.base_url is required")
		}
	case StoreTimescale:
		if c.Store.Timescale.ConnString == "" {
			return errors.New("store.timescale.conn_string is required")
		}
	default:
		return fmt.Errorf("store.kind %q is not one of %s, %s", c.Store.Kind, StoreHTTP, StoreTimescale)
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be > 0")
	}
	if c.Poll.MaxFailureBackoff < c.Poll.Interval {
		return errors.New("poll.max_failure_backoff must be >= poll.interval")
	}
	if c.Poll.BackoffMultiplier < 1 {
		return errors.New("poll.backoff_multiplier must be >= 1")
	}
	for i, k := range c.Extract.MultiAxis {
		if k.Kind == "" {
			return fmt.Errorf("extract.multi_axis[%d].kind is required", i)
		}
		if len(k.Axes) == 0 {
			return fmt.Errorf("extract.multi_axis[%d].axes must not be empty", i)
		}
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must be >= 0")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// AxisKinds returns the built-in multi-axis kinds plus configured ones.
func (c *Config) AxisKinds() domain.AxisKinds {
	kinds := domain.DefaultAxisKinds()
	for _, k := range c.Extract.MultiAxis {
		kinds.Register(domain.MultiAxisKind{Name: k.Kind, Axes: append([]string(nil), k.Axes...)})
	}
	return kinds
}
