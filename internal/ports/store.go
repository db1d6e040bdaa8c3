package ports

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghalamif/mtcflow/internal/domain"
)

// WriteOutcome classifies a downstream write response.
type WriteOutcome int

const (
	WriteOK WriteOutcome = iota
	// WriteInvalid means at least one record in the batch was rejected. The
	// store does not say which.
	WriteInvalid
	WriteStorageFailure
	WriteUnexpected
)

func (o WriteOutcome) String() string {
	switch o {
	case WriteOK:
		return "ok"
	case WriteInvalid:
		return "invalid"
	case WriteStorageFailure:
		return "storage_failure"
	default:
		return "unexpected"
	}
}

// WriteResult is the outcome of one batched write. StatusCode is the raw
// HTTP status when the store speaks HTTP.
type WriteResult struct {
	Outcome    WriteOutcome
	StatusCode int
}

func (r WriteResult) String() string {
	if r.StatusCode == 0 {
		return r.Outcome.String()
	}
	return fmt.Sprintf("%s (%d)", r.Outcome, r.StatusCode)
}

// ResultFromStatus maps a storage service status code onto an outcome:
// 200 ok, 402 invalid, 500 storage failure, anything else unexpected.
func ResultFromStatus(code int) WriteResult {
	res := WriteResult{StatusCode: code}
	switch code {
	case http.StatusOK:
		res.Outcome = WriteOK
	case http.StatusPaymentRequired:
		res.Outcome = WriteInvalid
	case http.StatusInternalServerError:
		res.Outcome = WriteStorageFailure
	default:
		res.Outcome = WriteUnexpected
	}
	return res
}

// Store is the downstream storage service. Write methods return an error
// only when no response was obtained; rejections are reported through
// WriteResult.
type Store interface {
	Status(ctx context.Context) error
	Version(ctx context.Context) (string, error)
	WriteEquipment(ctx context.Context, devices []domain.Device) (WriteResult, error)
	WriteDataItems(ctx context.Context, items []domain.DataItem) (WriteResult, error)
	WriteMeasurements(ctx context.Context, records []domain.Measurement) (WriteResult, error)
	Name() string
}
