package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kilianp07/iris/auth"
)

// EndpointConfig locates the prediction endpoint.
type EndpointConfig struct {
	BaseURL        string `json:"base_url"`
	Path           string `json:"path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Auth enables OAuth2 client credentials when client_id is set.
	Auth auth.Conf `json:"auth"`
}

// SetDefaults points at a local server on port 5000.
func (c *EndpointConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://127.0.0.1:5000"
	}
	if c.Path == "" {
		c.Path = "/predict"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks the base URL.
func (c EndpointConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", c.BaseURL)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// Timeout returns the request timeout.
func (c EndpointConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
