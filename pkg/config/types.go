package config

import (
	"time"

	"github.com/megaverse/megaverse/pkg/telemetry"
)

// Config is the complete process configuration.
type Config struct {
	// CandidateID is the opaque credential threaded into every request.
	CandidateID string `yaml:"candidate_id" validate:"required"`

	// API configures the remote service.
	API APIConfig `yaml:"api"`

	// Retry configures the rate-limit retry policy.
	Retry RetryConfig `yaml:"retry"`

	// Journal configures the run journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry configures logging, tracing, and metrics.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// APIConfig points the client at the remote service.
type APIConfig struct {
	// BaseURL is the API root (e.g., "https://challenge.crossmint.io/api").
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// RetryConfig configures retries of rate-limited placements.
type RetryConfig struct {
	// MaxAttempts is the number of calls per cell, including the first. The
	// last of 32 attempts already waits 2^30 base delays.
	MaxAttempts int `yaml:"max_attempts" validate:"min=1,max=32"`

	// BaseDelay is the backoff unit; the wait before attempt k is BaseDelay*2^(k-2).
	BaseDelay time.Duration `yaml:"base_delay" validate:"gt=0"`
}

// JournalConfig configures the SQLite run journal.
type JournalConfig struct {
	// Path is the database file. Empty disables journaling.
	Path string `yaml:"path"`
}
