package ports

import (
	"context"

	"github.com/ghalamif/mtcflow/internal/domain"
)

// Agent is the upstream telemetry source.
type Agent interface {
	Probe(ctx context.Context) (*domain.Catalog, error)
	Current(ctx context.Context) (*domain.Snapshot, error)
	Sample(ctx context.Context, from domain.Cursor) (*domain.Snapshot, error)
}
