package mtcflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/juju/clock"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ghalamif/mtcflow/internal/adapters/mtconnect"
	"github.com/ghalamif/mtcflow/internal/adapters/observability"
	"github.com/ghalamif/mtcflow/internal/adapters/sink"
	"github.com/ghalamif/mtcflow/internal/app/pipeline"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// BridgeOption customizes the dependencies used by Bridge.
type BridgeOption func(*bridgeOverrides)

type bridgeOverrides struct {
	agent         Agent
	store         Store
	observability Observability
	logger        *zerolog.Logger
	clock         clock.Clock
}

// WithAgent injects a custom agent (recorded fixtures, simulators, etc.).
func WithAgent(a Agent) BridgeOption {
	return func(o *bridgeOverrides) {
		o.agent = a
	}
}

// WithStore injects a custom store so records can be sent to any database or API.
func WithStore(s Store) BridgeOption {
	return func(o *bridgeOverrides) {
		o.store = s
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) BridgeOption {
	return func(o *bridgeOverrides) {
		o.observability = obs
	}
}

// WithLogger sets the logger used by the default observability backend.
func WithLogger(l zerolog.Logger) BridgeOption {
	return func(o *bridgeOverrides) {
		o.logger = &l
	}
}

// WithClock replaces the wall clock driving the poll interval.
func WithClock(c clock.Clock) BridgeOption {
	return func(o *bridgeOverrides) {
		o.clock = c
	}
}

// Bridge wires the agent → normalization → store pipeline and exposes simple
// lifecycle hooks for embedding the bridge inside any Go service.
type Bridge struct {
	cfg       *Config
	obs       ports.Observability
	agent     ports.Agent
	store     ports.Store
	clock     clock.Clock
	forwarder *pipeline.Forwarder
	registry  *prometheus.Registry
	db        *sql.DB

	metricsSrv  *http.Server
	metricsAddr net.Addr
}

// NewBridge builds the default adapters (MTConnect HTTP agent, HTTP or
// TimescaleDB store, Prometheus + zerolog observability). BridgeOption values
// override any of them.
func NewBridge(cfg *Config, opts ...BridgeOption) (*Bridge, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var overrides bridgeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	b := &Bridge{cfg: cfg, registry: prometheus.NewRegistry()}

	b.obs = overrides.observability
	if b.obs == nil {
		logger := log.Logger
		if overrides.logger != nil {
			logger = *overrides.logger
		}
		b.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		b.obs = observability.NewPromObs(logger, b.registry)
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}

	var err error
	b.agent = overrides.agent
	if b.agent == nil {
		b.agent, err = mtconnect.NewAgent(cfg.Agent, client)
		if err != nil {
			return nil, err
		}
	}

	b.store = overrides.store
	if b.store == nil {
		b.store, err = b.openStore(client)
		if err != nil {
			return nil, err
		}
	}

	b.clock = overrides.clock
	if b.clock == nil {
		b.clock = clock.WallClock
	}

	b.forwarder = pipeline.NewForwarder(b.store, cfg.AxisKinds(), b.obs)
	return b, nil
}

func (b *Bridge) openStore(client *http.Client) (ports.Store, error) {
	switch b.cfg.Store.Kind {
	case StoreTimescale:
		db, err := sql.Open("postgres", b.cfg.Store.Timescale.ConnString)
		if err != nil {
			return nil, err
		}
		b.db = db
		return sink.NewTimescaleStore(db, b.cfg.Store.Timescale.Tables), nil
	default:
		return sink.NewHTTPStore(b.cfg.Store.BaseURL, client)
	}
}

// Run performs the startup sequence (store check, discovery, current
// snapshot) and then polls until ctx is cancelled. A failed startup step is
// returned as an error; cancellation is not an error.
func (b *Bridge) Run(ctx context.Context) error {
	if b == nil {
		return fmt.Errorf("bridge is nil")
	}
	if err := b.startMetrics(); err != nil {
		return err
	}

	err := b.run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(err, b.Shutdown(shutdownCtx))
}

func (b *Bridge) run(ctx context.Context) error {
	cursor, err := pipeline.Bootstrap(ctx, b.agent, b.store, b.forwarder, b.obs)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		b.obs.LogCritical("bootstrap_failed", err)
		return err
	}

	poller := pipeline.NewPoller(b.agent, b.forwarder, b.cfg.Poll, b.obs, b.clock, cursor)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	b.obs.LogInfo("poller_stopped", ports.Field{Key: "cursor", Value: poller.Cursor().String()})
	return nil
}

// Shutdown stops the metrics server and closes the DB connection.
func (b *Bridge) Shutdown(ctx context.Context) error {
	var errs []error

	if b.metricsSrv != nil {
		if err := b.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		b.metricsSrv = nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			errs = append(errs, err)
		}
		b.db = nil
	}

	return errors.Join(errs...)
}

// MetricsAddr is the address the metrics server listens on, or nil when it
// is disabled or not started.
func (b *Bridge) MetricsAddr() net.Addr { return b.metricsAddr }

func (b *Bridge) startMetrics() error {
	if b.cfg.Metrics.Addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", b.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	b.metricsAddr = ln.Addr()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	b.metricsSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := b.metricsSrv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.obs.LogError("metrics_server_exited", err)
		}
	}()
	b.obs.LogInfo("metrics_listening", ports.Field{Key: "addr", Value: ln.Addr().String()})
	return nil
}
