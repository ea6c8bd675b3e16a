package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/megaverse/megaverse/pkg/telemetry"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvCandidateID = "CANDIDATE_ID"
	EnvAPIURL      = "MEGAVERSE_API_URL"
	EnvJournal     = "MEGAVERSE_JOURNAL"
	EnvMaxAttempts = "MEGAVERSE_MAX_ATTEMPTS"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
)

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://challenge.crossmint.io/api",
			Timeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   time.Second,
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}

// Load reads the optional YAML file at path, applies environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment.
func LoadWithEnv(path string, env LookupEnv) (*Config, error) {
	cfg, err := Read(path, env)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers the file and environment over the defaults without
// validating. Commands that never contact the API use it so that a
// candidate id is not required.
func Read(path string, env LookupEnv) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env LookupEnv) error {
	if v, ok := env(EnvCandidateID); ok && v != "" {
		cfg.CandidateID = v
	}
	if v, ok := env(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := env(EnvJournal); ok {
		cfg.Journal.Path = v
	}
	if v, ok := env(EnvMaxAttempts); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvMaxAttempts, v)
		}
		cfg.Retry.MaxAttempts = n
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		cfg.Telemetry.Logging.Level = strings.ToLower(v)
	}
	if v, ok := env(EnvLogFormat); ok && v != "" {
		cfg.Telemetry.Logging.Format = strings.ToLower(v)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and the telemetry section.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry configuration: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		if field == "CandidateID" {
			return fmt.Sprintf("%s is required (set %s)", field, EnvCandidateID)
		}
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %v", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s (value %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}
