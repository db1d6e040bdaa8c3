package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// DefaultBaseURL is where the storage service mounts its versioned API.
const DefaultBaseURL = "http://localhost:3000/1.0.0"

const (
	StatusPath          = "api/status"
	VersionPath         = "api/version"
	EquipmentWritePath  = "api/equipmentDictionary/write"
	DataItemWritePath   = "api/dataDictionary/write"
	MeasurementDataPath = "api/data/write"
)

// HTTPStore forwards batches to the storage service's JSON API.
type HTTPStore struct {
	base   *url.URL
	client *http.Client
}

func NewHTTPStore(baseURL string, client *http.Client) (*HTTPStore, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("store base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("store base url: unsupported scheme %q", base.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{base: base, client: client}, nil
}

func (s *HTTPStore) Name() string { return "http" }

func (s *HTTPStore) endpoint(path string) string {
	return s.base.JoinPath(path).String()
}

// Status succeeds only on a 200 from the liveness endpoint.
func (s *HTTPStore) Status(ctx context.Context) error {
	resp, err := s.get(ctx, StatusPath)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return &ports.StatusError{URL: s.endpoint(StatusPath), Code: resp.StatusCode}
	}
	return nil
}

func (s *HTTPStore) Version(ctx context.Context) (string, error) {
	resp, err := s.get(ctx, VersionPath)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return "", &ports.StatusError{URL: s.endpoint(VersionPath), Code: resp.StatusCode}
	}

	var body struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode version: %w", err)
	}
	return body.Version, nil
}

func (s *HTTPStore) WriteEquipment(ctx context.Context, devices []domain.Device) (ports.WriteResult, error) {
	if devices == nil {
		devices = []domain.Device{}
	}
	return s.post(ctx, EquipmentWritePath, devices)
}

func (s *HTTPStore) WriteDataItems(ctx context.Context, items []domain.DataItem) (ports.WriteResult, error) {
	if items == nil {
		items = []domain.DataItem{}
	}
	return s.post(ctx, DataItemWritePath, items)
}

func (s *HTTPStore) WriteMeasurements(ctx context.Context, records []domain.Measurement) (ports.WriteResult, error) {
	if records == nil {
		records = []domain.Measurement{}
	}
	return s.post(ctx, MeasurementDataPath, records)
}

func (s *HTTPStore) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return s.client.Do(req)
}

func (s *HTTPStore) post(ctx context.Context, path string, payload any) (ports.WriteResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.WriteResult{}, fmt.Errorf("marshal %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(path), bytes.NewReader(body))
	if err != nil {
		return ports.WriteResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return ports.WriteResult{}, err
	}
	defer drain(resp)
	return ports.ResultFromStatus(resp.StatusCode), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}

var _ ports.Store = (*HTTPStore)(nil)
