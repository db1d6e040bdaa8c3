package mtcflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Flow reads as Conf → StreamIN → StreamOUT. Each step edits the flow's own
// copy of the configuration; bad steps are collected and reported together
// by StreamOUT, which builds the Bridge.
type Flow struct {
	cfg  Config
	opts []BridgeOption
	errs []error
}

// StreamInOption tunes what is read from the agent and how often.
type StreamInOption func(*Flow) error

// StreamOutOption chooses where normalized records go.
type StreamOutOption func(*Flow) error

// Conf loads YAML from disk (built-in defaults for an empty path).
func Conf(path string, opts ...BridgeOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig starts a flow from a copy of cfg; cfg itself is not modified.
func ConfFromConfig(cfg *Config, opts ...BridgeOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: *cfg, opts: append([]BridgeOption(nil), opts...)}
	f.cfg.Extract.MultiAxis = append([]MultiAxisConfig(nil), cfg.Extract.MultiAxis...)
	return f, nil
}

// Config is the flow's working configuration.
func (f *Flow) Config() *Config { return &f.cfg }

func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	for _, opt := range opts {
		if opt != nil {
			f.record("stream in", opt(f))
		}
	}
	return f
}

func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Bridge, error) {
	for _, opt := range opts {
		if opt != nil {
			f.record("stream out", opt(f))
		}
	}
	if err := errors.Join(f.errs...); err != nil {
		return nil, err
	}
	return NewBridge(&f.cfg, f.opts...)
}

// Run is StreamOUT followed by Bridge.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	b, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

func (f *Flow) record(side string, err error) {
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("%s: %w", side, err))
	}
}

// StreamInAgentURL points the flow at another MTConnect agent.
func StreamInAgentURL(raw string) StreamInOption {
	return func(f *Flow) error {
		agent := AgentConfig{BaseURL: raw}
		agent.ApplyDefaults()
		if err := agent.Validate(); err != nil {
			return err
		}
		f.cfg.Agent = agent
		return nil
	}
}

// StreamInInterval sets the poll interval, raising the failure back-off cap
// to match when it would fall below it.
func StreamInInterval(d time.Duration) StreamInOption {
	return func(f *Flow) error {
		if d <= 0 {
			return fmt.Errorf("interval %s must be > 0", d)
		}
		f.cfg.Poll.Interval = d
		if f.cfg.Poll.MaxFailureBackoff < d {
			f.cfg.Poll.MaxFailureBackoff = d
		}
		return nil
	}
}

// StreamInFailureBackoff lets waits after consecutive failed polls grow by
// multiplier up to limit.
func StreamInFailureBackoff(limit time.Duration, multiplier float64) StreamInOption {
	return func(f *Flow) error {
		if limit < f.cfg.Poll.Interval {
			return fmt.Errorf("failure back-off %s is shorter than the interval %s", limit, f.cfg.Poll.Interval)
		}
		if multiplier < 1 {
			return fmt.Errorf("back-off multiplier %g must be >= 1", multiplier)
		}
		f.cfg.Poll.MaxFailureBackoff = limit
		f.cfg.Poll.BackoffMultiplier = multiplier
		return nil
	}
}

// StreamInMultiAxis splits values of kind into one record per axis, e.g.
// StreamInMultiAxis("Orientation", "A", "B", "C").
func StreamInMultiAxis(kind string, axes ...string) StreamInOption {
	return func(f *Flow) error {
		if kind == "" || len(axes) == 0 {
			return fmt.Errorf("multi-axis kind needs a name and at least one axis")
		}
		f.cfg.Extract.MultiAxis = append(f.cfg.Extract.MultiAxis, MultiAxisConfig{
			Kind: kind,
			Axes: append([]string(nil), axes...),
		})
		return nil
	}
}

// StreamInAgent replaces the HTTP agent, e.g. with recorded documents.
func StreamInAgent(a Agent) StreamInOption {
	return func(f *Flow) error {
		if a == nil {
			return fmt.Errorf("agent is nil")
		}
		f.opts = append(f.opts, WithAgent(a))
		return nil
	}
}

// StreamOutStoreURL sends records to a storage service at baseURL.
func StreamOutStoreURL(baseURL string) StreamOutOption {
	return func(f *Flow) error {
		if baseURL == "" {
			return fmt.Errorf("store base url is required")
		}
		f.cfg.Store.Kind = StoreHTTP
		f.cfg.Store.BaseURL = baseURL
		return nil
	}
}

// StreamOutTimescale writes straight into TimescaleDB.
func StreamOutTimescale(connString string) StreamOutOption {
	return func(f *Flow) error {
		if connString == "" {
			return fmt.Errorf("timescale connection string is required")
		}
		f.cfg.Store.Kind = StoreTimescale
		f.cfg.Store.Timescale.ConnString = connString
		return nil
	}
}

// StreamOutStore hands records to s.
func StreamOutStore(s Store) StreamOutOption {
	return func(f *Flow) error {
		if s == nil {
			return fmt.Errorf("store is nil")
		}
		f.opts = append(f.opts, WithStore(s))
		return nil
	}
}

// StreamOutCallback hands every batch to fn.
func StreamOutCallback(name string, fn MeasurementHandler) StreamOutOption {
	return func(f *Flow) error {
		if fn == nil {
			return fmt.Errorf("callback %q is nil", name)
		}
		f.opts = append(f.opts, WithStore(NewCallbackStore(name, fn)))
		return nil
	}
}
