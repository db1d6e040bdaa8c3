package pipeline

import (
	"context"
	"strconv"
	"time"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Forwarder normalizes a snapshot and writes the records as one batch.
type Forwarder struct {
	store ports.Store
	kinds domain.AxisKinds
	obs   ports.Observability
}

func NewForwarder(store ports.Store, kinds domain.AxisKinds, obs ports.Observability) *Forwarder {
	if kinds == nil {
		kinds = domain.DefaultAxisKinds()
	}
	return &Forwarder{store: store, kinds: kinds, obs: obs}
}

// Forward writes one batch per snapshot, empty or not, and returns the
// snapshot's cursor whether or not the store accepted it.
func (f *Forwarder) Forward(ctx context.Context, snap *domain.Snapshot) domain.Cursor {
	start := time.Now()
	records, skipped := Normalize(snap.Observations, f.kinds)

	for _, s := range skipped {
		if s.Reason == SkipMalformed {
			f.obs.LogWarn("multi_axis_value_malformed",
				ports.Field{Key: "kind", Value: s.Observation.Kind},
				ports.Field{Key: "data_item_id", Value: s.Observation.DataItemID},
				ports.Field{Key: "value", Value: s.Observation.Value})
		}
	}
	if len(skipped) > 0 {
		f.obs.IncCounter("mtc_records_skipped_total", float64(len(skipped)))
	}

	res, err := f.store.WriteMeasurements(ctx, records)
	reportWrite(f.obs, EndpointData, len(records), res, err)
	if err == nil && res.Outcome == ports.WriteOK {
		f.obs.IncCounter("mtc_records_forwarded_total", float64(len(records)))
	}
	f.obs.ObserveLatency("mtc_poll_latency_seconds", time.Since(start).Seconds())

	if seq, err := strconv.ParseFloat(snap.NextSequence.String(), 64); err == nil {
		f.obs.SetGauge("mtc_cursor", seq)
	}
	return snap.NextSequence
}
