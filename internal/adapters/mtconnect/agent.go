package mtconnect

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ghalamif/mtcflow/internal/domain"
	"github.com/ghalamif/mtcflow/internal/ports"
)

// Agent talks to an MTConnect agent over HTTP.
type Agent struct {
	base   *url.URL
	client *http.Client
}

// NewAgent validates cfg and returns an agent client. A nil client falls
// back to http.DefaultClient.
func NewAgent(cfg Config, client *http.Client) (*Agent, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Agent{base: base, client: client}, nil
}

func (a *Agent) ProbeURL() string   { return a.base.JoinPath("probe").String() }
func (a *Agent) CurrentURL() string { return a.base.JoinPath("current").String() }

// SampleURL returns the sample endpoint asking for everything after from.
func (a *Agent) SampleURL(from domain.Cursor) string {
	u := a.base.JoinPath("sample")
	u.RawQuery = url.Values{"from": {from.String()}}.Encode()
	return u.String()
}

// Probe fetches and parses the device catalog.
func (a *Agent) Probe(ctx context.Context) (*domain.Catalog, error) {
	var doc devicesDocument
	if err := a.fetch(ctx, a.ProbeURL(), &doc); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	return doc.catalog()
}

// Current fetches the latest value of every data item.
func (a *Agent) Current(ctx context.Context) (*domain.Snapshot, error) {
	return a.snapshot(ctx, a.CurrentURL())
}

// Sample fetches every value reported after from.
func (a *Agent) Sample(ctx context.Context, from domain.Cursor) (*domain.Snapshot, error) {
	return a.snapshot(ctx, a.SampleURL(from))
}

func (a *Agent) snapshot(ctx context.Context, u string) (*domain.Snapshot, error) {
	var doc streamsDocument
	if err := a.fetch(ctx, u, &doc); err != nil {
		return nil, err
	}
	snap, err := doc.snapshot()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u, err)
	}
	return snap, nil
}

func (a *Agent) fetch(ctx context.Context, u string, into any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &ports.StatusError{URL: u, Code: resp.StatusCode, Detail: agentErrorDetail(body)}
	}

	if err := xml.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

var _ ports.Agent = (*Agent)(nil)
