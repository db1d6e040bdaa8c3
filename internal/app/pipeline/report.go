package pipeline

import (
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Store endpoints as they appear in logs and metrics.
const (
	EndpointEquipment = "equipment_dictionary"
	EndpointDataItems = "data_dictionary"
	EndpointData      = "data"
)

// reportWrite logs one store response. Rejected batches are never retried
// and the offending record is not identified.
func reportWrite(obs ports.Observability, endpoint string, records int, res ports.WriteResult, err error) {
	fields := []ports.Field{
		{Key: "endpoint", Value: endpoint},
		{Key: "records", Value: records},
	}
	if err != nil {
		res.Outcome = ports.WriteStorageFailure
		obs.RecordWrite(endpoint, res)
		obs.LogError("store_write_failed", err, fields...)
		return
	}

	obs.RecordWrite(endpoint, res)
	switch res.Outcome {
	case ports.WriteOK:
		obs.LogInfo("store_write_ok", fields...)
	case ports.WriteInvalid:
		obs.LogWarn("store_write_invalid", fields...)
	case ports.WriteStorageFailure:
		obs.LogError("store_write_storage_failure", nil, fields...)
	default:
		obs.LogWarn("store_write_unexpected_status", append(fields, ports.Field{Key: "status", Value: res.StatusCode})...)
	}
}
