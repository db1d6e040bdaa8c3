package mtcflow

import (
	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Device is one equipment dictionary entry.
type Device = domain.Device

// DataItem is one data dictionary entry.
type DataItem = domain.DataItem

// Measurement is the record written to the store for each channel value (or
// axis of a multi-axis value).
type Measurement = domain.Measurement

// Tags carries the data item id of a measurement.
type Tags = domain.Tags

// Fields carries the measurement value as reported by the agent.
type Fields = domain.Fields

// Cursor is the agent's nextSequence token.
type Cursor = domain.Cursor

// Catalog is the parsed probe response.
type Catalog = domain.Catalog

// Snapshot is a parsed current or sample response.
type Snapshot = domain.Snapshot

// Observation is a raw Samples element before normalization.
type Observation = domain.Observation

// MultiAxisKind is a channel kind whose value carries one token per axis.
type MultiAxisKind = domain.MultiAxisKind

// Agent fetches probe, current and sample documents from an MTConnect agent.
type Agent = ports.Agent

// Store is the downstream storage service.
type Store = ports.Store

// WriteResult is the classified response to one batched write.
type WriteResult = ports.WriteResult

// WriteOutcome classifies a write response.
type WriteOutcome = ports.WriteOutcome

// Observability emits logs and metrics about polls and writes.
type Observability = ports.Observability

// Field is a structured log/metric field used by Observability implementations.
type Field = ports.Field

const (
	WriteOK             = ports.WriteOK
	WriteInvalid        = ports.WriteInvalid
	WriteStorageFailure = ports.WriteStorageFailure
	WriteUnexpected     = ports.WriteUnexpected
)
