package sink

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

func newTestStore(t *testing.T, handler http.HandlerFunc) (*HTTPStore, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store, err := NewHTTPStore(srv.URL+"/1.0.0/", srv.Client())
	require.NoError(t, err)
	return store, &reqs
}

func TestHTTPStoreStatusAndVersion(t *testing.T) {
	store, reqs := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.0.0/api/status":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Successful connection."})
		case "/1.0.0/api/version":
			_ = json.NewEncoder(w).Encode(map[string]string{"version": "1.0.0"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, store.Status(context.Background()))
	v, err := store.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	require.Len(t, *reqs, 2)
	assert.Equal(t, http.MethodGet, (*reqs)[0].Method)
}

func TestHTTPStoreStatusFailure(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := store.Status(context.Background())
	assert.ErrorIs(t, err, ports.ErrUnexpectedStatus)

	_, err = store.Version(context.Background())
	assert.ErrorIs(t, err, ports.ErrUnexpectedStatus)
}

func TestHTTPStoreWriteMeasurementsPayload(t *testing.T) {
	store, reqs := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{
		{Measurement: "PathPosition", Timestamp: "2024-03-01T10:00:04Z", Tags: domain.Tags{DataItemID: "p1_X"}, Fields: domain.Fields{Value: "1.0"}},
		{Measurement: "Load", Tags: domain.Tags{DataItemID: "l1"}, Fields: domain.Fields{Value: "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, ports.WriteOK, res.Outcome)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/1.0.0/api/data/write", got.Path)
	assert.JSONEq(t, `[
		{"measurement":"PathPosition","timestamp":"2024-03-01T10:00:04Z","tags":{"dataItemId":"p1_X"},"fields":{"value":"1.0"}},
		{"measurement":"Load","tags":{"dataItemId":"l1"},"fields":{"value":"3"}}
	]`, string(got.Body))
}

func TestHTTPStoreDictionaryEndpoints(t *testing.T) {
	store, reqs := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := store.WriteEquipment(context.Background(), []domain.Device{{DeviceID: "d", DeviceName: "dev", DeviceUUID: "D1"}})
	require.NoError(t, err)
	_, err = store.WriteDataItems(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, *reqs, 2)
	assert.Equal(t, "/1.0.0/api/equipmentDictionary/write", (*reqs)[0].Path)
	assert.JSONEq(t, `[{"deviceId":"d","deviceName":"dev","deviceUUID":"D1"}]`, string((*reqs)[0].Body))
	assert.Equal(t, "/1.0.0/api/dataDictionary/write", (*reqs)[1].Path)
	assert.JSONEq(t, `[]`, string((*reqs)[1].Body))
}

func TestHTTPStoreResponsePolicy(t *testing.T) {
	for code, want := range map[int]ports.WriteOutcome{
		http.StatusOK:                  ports.WriteOK,
		http.StatusPaymentRequired:     ports.WriteInvalid,
		http.StatusInternalServerError: ports.WriteStorageFailure,
		http.StatusTeapot:              ports.WriteUnexpected,
	} {
		code := code
		store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		})
		res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{{Measurement: "m"}})
		require.NoError(t, err)
		assert.Equal(t, want, res.Outcome, "status %d", code)
		assert.Equal(t, code, res.StatusCode)
	}
}

func TestHTTPStoreWriteEmptyMeasurements(t *testing.T) {
	store, reqs := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	res, err := store.WriteMeasurements(context.Background(), []domain.Measurement{})
	require.NoError(t, err)
	assert.Equal(t, ports.WriteOK, res.Outcome)

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/1.0.0/api/data/write", (*reqs)[0].Path)
	assert.JSONEq(t, `[]`, string((*reqs)[0].Body))
}
