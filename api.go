package mtcflow

import (
	"time"

	base "github.com/ghalamif/mtcflow/pkg/mtcflow"
)

// Re-exported errors for convenience.
var ErrChannelStoreClosed = base.ErrChannelStoreClosed

// Type aliases so consumers can import github.com/ghalamif/mtcflow directly.
type (
	Config             = base.Config
	AgentConfig        = base.AgentConfig
	StoreConfig        = base.StoreConfig
	TimescaleConfig    = base.TimescaleConfig
	PollPolicy         = base.PollPolicy
	ExtractConfig      = base.ExtractConfig
	MultiAxisConfig    = base.MultiAxisConfig
	HTTPConfig         = base.HTTPConfig
	MetricsConfig      = base.MetricsConfig
	LogConfig          = base.LogConfig
	Flow               = base.Flow
	StreamInOption     = base.StreamInOption
	StreamOutOption    = base.StreamOutOption
	Bridge             = base.Bridge
	BridgeOption       = base.BridgeOption
	Device             = base.Device
	DataItem           = base.DataItem
	Measurement        = base.Measurement
	Tags               = base.Tags
	Fields             = base.Fields
	Cursor             = base.Cursor
	Catalog            = base.Catalog
	Snapshot           = base.Snapshot
	Observation        = base.Observation
	MultiAxisKind      = base.MultiAxisKind
	MeasurementHandler = base.MeasurementHandler
	Agent              = base.Agent
	Store              = base.Store
	WriteResult        = base.WriteResult
	WriteOutcome       = base.WriteOutcome
	Observability      = base.Observability
	Field              = base.Field
)

// Config helpers.
func DefaultConfig() *Config {
	return base.DefaultConfig()
}

func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Flow builder helpers.
func Conf(path string, opts ...BridgeOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...BridgeOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func StreamInAgentURL(raw string) StreamInOption {
	return base.StreamInAgentURL(raw)
}

func StreamInInterval(d time.Duration) StreamInOption {
	return base.StreamInInterval(d)
}

func StreamInFailureBackoff(limit time.Duration, multiplier float64) StreamInOption {
	return base.StreamInFailureBackoff(limit, multiplier)
}

func StreamInMultiAxis(kind string, axes ...string) StreamInOption {
	return base.StreamInMultiAxis(kind, axes...)
}

func StreamInAgent(a Agent) StreamInOption {
	return base.StreamInAgent(a)
}

func StreamOutStoreURL(baseURL string) StreamOutOption {
	return base.StreamOutStoreURL(baseURL)
}

func StreamOutTimescale(connString string) StreamOutOption {
	return base.StreamOutTimescale(connString)
}

func StreamOutStore(s Store) StreamOutOption {
	return base.StreamOutStore(s)
}

func StreamOutCallback(name string, fn MeasurementHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Bridge and options.
func NewBridge(cfg *Config, opts ...BridgeOption) (*Bridge, error) {
	return base.NewBridge(cfg, opts...)
}

func WithAgent(a Agent) BridgeOption {
	return base.WithAgent(a)
}

func WithStore(s Store) BridgeOption {
	return base.WithStore(s)
}

func WithObservability(obs Observability) BridgeOption {
	return base.WithObservability(obs)
}

// Store adapters.
func NewCallbackStore(name string, fn MeasurementHandler) Store {
	return base.NewCallbackStore(name, fn)
}

func NewChannelStore(name string, buffer int) (Store, <-chan []Measurement, func()) {
	return base.NewChannelStore(name, buffer)
}
