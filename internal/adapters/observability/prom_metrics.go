package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ghalamif/mtcflow/internal/ports"
)

// Metric names understood by PromObs.
const (
	PollsTotal            = "mtc_polls_total"
	PollFailuresTotal     = "mtc_poll_failures_total"
	RecordsForwardedTotal = "mtc_records_forwarded_total"
	RecordsSkippedTotal   = "mtc_records_skipped_total"
	CursorGauge           = "mtc_cursor"
	PollLatencySeconds    = "mtc_poll_latency_seconds"
	WriteOutcomesTotal    = "mtc_write_outcomes_total"
)

type PromObs struct {
	log      zerolog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	writes   *prometheus.CounterVec
}

// NewPromObs registers the bridge metrics with reg. A nil reg uses the
// default registerer.
func NewPromObs(logger zerolog.Logger, reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	polls := prometheus.NewCounter(prometheus.CounterOpts{
		Name: PollsTotal,
		Help: "Snapshot requests issued to the agent.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: PollFailuresTotal,
		Help: "Snapshot requests that yielded no new cursor.",
	})
	forwarded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: RecordsForwardedTotal,
		Help: "Measurement records accepted by the store.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: RecordsSkippedTotal,
		Help: "Observations dropped during normalization (UNAVAILABLE or malformed).",
	})
	cursor := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: CursorGauge,
		Help: "Last nextSequence read from the agent.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    PollLatencySeconds,
		Help:    "Time spent normalizing and writing one snapshot batch.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})
	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: WriteOutcomesTotal,
		Help: "Store write responses by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	reg.MustRegister(polls, failures, forwarded, skipped, cursor, latency, writes)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			PollsTotal:            polls,
			PollFailuresTotal:     failures,
			RecordsForwardedTotal: forwarded,
			RecordsSkippedTotal:   skipped,
		},
		gauges: map[string]prometheus.Gauge{
			CursorGauge: cursor,
		},
		histos: map[string]prometheus.Observer{
			PollLatencySeconds: latency,
		},
		writes: writes,
	}
}

func withFields(ev *zerolog.Event, fields []ports.Field) *zerolog.Event {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	return ev
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	withFields(p.log.Info(), fields).Msg(msg)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	withFields(p.log.Warn(), fields).Msg(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	withFields(p.log.Error().Err(err), fields).Msg(msg)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	withFields(p.log.WithLevel(zerolog.FatalLevel).Err(err), fields).Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordWrite(endpoint string, res ports.WriteResult) {
	p.writes.WithLabelValues(endpoint, res.Outcome.String()).Inc()
}

var _ ports.Observability = (*PromObs)(nil)
