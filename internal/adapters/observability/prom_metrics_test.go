package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/ghalamif/mtcflow/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(zerolog.Nop(), reg)

	obs.IncCounter(RecordsForwardedTotal, 5)
	if got := testutil.ToFloat64(obs.counters[RecordsForwardedTotal]); got != 5 {
		t.Fatalf("expected forwarded counter 5, got %f", got)
	}

	obs.IncCounter(PollFailuresTotal, 2)
	if got := testutil.ToFloat64(obs.counters[PollFailuresTotal]); got != 2 {
		t.Fatalf("expected poll failure counter 2, got %f", got)
	}

	obs.SetGauge(CursorGauge, 1547)
	if got := testutil.ToFloat64(obs.gauges[CursorGauge]); got != 1547 {
		t.Fatalf("expected cursor gauge 1547, got %f", got)
	}

	obs.ObserveLatency(PollLatencySeconds, 0.5)
	hCollector := obs.histos[PollLatencySeconds].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}

	obs.RecordWrite("data", ports.WriteResult{Outcome: ports.WriteInvalid, StatusCode: 402})
	if got := testutil.ToFloat64(obs.writes.WithLabelValues("data", "invalid")); got != 1 {
		t.Fatalf("expected one invalid data write, got %f", got)
	}

	obs.IncCounter("unknown_metric", 1)
}

func TestPromObsLogsFields(t *testing.T) {
	var buf bytes.Buffer
	obs := NewPromObs(zerolog.New(&buf), prometheus.NewRegistry())

	obs.LogError("store_write_failed", errors.New("boom"), ports.Field{Key: "endpoint", Value: "data"})

	line := buf.String()
	for _, want := range []string{`"level":"error"`, `"error":"boom"`, `"endpoint":"data"`, `"message":"store_write_failed"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in log line %s", want, line)
		}
	}
}
