package pipeline

import (
	"github.com/ghalamif/mtcflow/internal/domain"
)

type SkipReason string

const (
	SkipUnavailable SkipReason = "unavailable"
	SkipMalformed   SkipReason = "malformed"
)

// Skipped is an observation that produced no record.
type Skipped struct {
	Observation domain.Observation
	Reason      SkipReason
	Err         error
}

// Normalize turns Samples observations into measurement records.
// UNAVAILABLE values are dropped. A multi-axis kind yields one record per
// axis with the axis label appended to the data item id; a value whose token
// count does not match the kind's arity is dropped whole. Everything else
// yields a single record carrying the raw text.
func Normalize(observations []domain.Observation, kinds domain.AxisKinds) ([]domain.Measurement, []Skipped) {
	var (
		out     = make([]domain.Measurement, 0, len(observations))
		skipped []Skipped
	)

	for _, o := range observations {
		if o.Value == domain.Unavailable {
			skipped = append(skipped, Skipped{Observation: o, Reason: SkipUnavailable})
			continue
		}

		kind, multi := kinds.Lookup(o.Kind)
		if !multi {
			out = append(out, record(o, o.DataItemID, o.Value))
			continue
		}

		tokens, err := kind.Split(o.Value)
		if err != nil {
			skipped = append(skipped, Skipped{Observation: o, Reason: SkipMalformed, Err: err})
			continue
		}
		for i, tok := range tokens {
			out = append(out, record(o, kind.AxisID(o.DataItemID, i), tok))
		}
	}
	return out, skipped
}

func record(o domain.Observation, dataItemID, value string) domain.Measurement {
	return domain.Measurement{
		Measurement: o.Kind,
		Timestamp:   o.Timestamp,
		Tags:        domain.Tags{DataItemID: dataItemID},
		Fields:      domain.Fields{Value: value},
	}
}
