package pipeline

import (
	"context"
	"fmt"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// CheckStore verifies the store is reachable and logs its version. Only the
// status check is fatal.
func CheckStore(ctx context.Context, store ports.Store, obs ports.Observability) error {
	if err := store.Status(ctx); err != nil {
		return fmt.Errorf("store status: %w", err)
	}
	obs.LogInfo("store_connected", ports.Field{Key: "store", Value: store.Name()})

	v, err := store.Version(ctx)
	if err != nil {
		obs.LogWarn("store_version_unavailable", ports.Field{Key: "error", Value: err.Error()})
		return nil
	}
	obs.LogInfo("store_version", ports.Field{Key: "version", Value: v})
	return nil
}

// Discover probes the agent and writes the equipment and data dictionaries,
// one batch each. A failed probe is fatal; rejected writes are only logged.
func Discover(ctx context.Context, agent ports.Agent, store ports.Store, obs ports.Observability) (*domain.Catalog, error) {
	cat, err := agent.Probe(ctx)
	if err != nil {
		return nil, err
	}
	obs.LogInfo("probe_complete",
		ports.Field{Key: "devices", Value: len(cat.Devices)},
		ports.Field{Key: "data_items", Value: len(cat.DataItems)})

	res, err := store.WriteEquipment(ctx, cat.Devices)
	reportWrite(obs, EndpointEquipment, len(cat.Devices), res, err)

	res, err = store.WriteDataItems(ctx, cat.DataItems)
	reportWrite(obs, EndpointDataItems, len(cat.DataItems), res, err)

	return cat, nil
}

// Bootstrap runs the one-time startup sequence and returns the cursor the
// poll loop starts from.
func Bootstrap(ctx context.Context, agent ports.Agent, store ports.Store, fwd *Forwarder, obs ports.Observability) (domain.Cursor, error) {
	if err := CheckStore(ctx, store, obs); err != nil {
		return "", err
	}
	if _, err := Discover(ctx, agent, store, obs); err != nil {
		return "", err
	}

	snap, err := agent.Current(ctx)
	if err != nil {
		return "", fmt.Errorf("current: %w", err)
	}
	cursor := fwd.Forward(ctx, snap)
	obs.LogInfo("bootstrap_complete", ports.Field{Key: "cursor", Value: cursor.String()})
	return cursor, nil
}
