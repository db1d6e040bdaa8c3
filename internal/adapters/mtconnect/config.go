package mtconnect

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the NIST smart manufacturing systems test bed agent.
const DefaultBaseURL = "https://smstestbed.nist.gov/vds"

// Config locates the agent. Probe, current and sample are resolved
// relative to BaseURL.
type Config struct {
	BaseURL string `yaml:"base_url"`
}

func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base_url: host is required")
	}
	return nil
}
