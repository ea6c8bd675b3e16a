package rest

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is the public megaverse API.
const DefaultBaseURL = "https://challenge.crossmint.io/api"

// Config holds REST client configuration.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string

	// Timeout bounds every request, including reading the response body.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxErrorBody caps how much of an error response body is kept.
	MaxErrorBody int64
}

// DefaultConfig returns a configuration pointing at the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      30 * time.Second,
		UserAgent:    "megaverse/dev",
		MaxErrorBody: 1024,
	}
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL must be http or https, got %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxErrorBody <= 0 {
		c.MaxErrorBody = 1024
	}
	return nil
}
