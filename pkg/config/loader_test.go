package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "megaverse.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromEnvOnly(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{
		EnvCandidateID: "cand-123",
	}))
	if err != nil {
		t.Fatalf("LoadWithEnv failed: %v", err)
	}

	if cfg.CandidateID != "cand-123" {
		t.Errorf("CandidateID = %q", cfg.CandidateID)
	}
	if cfg.API.BaseURL != "https://challenge.crossmint.io/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != time.Second {
		t.Errorf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Journal.Path != "" {
		t.Errorf("journal should be disabled by default, got %q", cfg.Journal.Path)
	}
}

func TestMissingCandidateID(t *testing.T) {
	_, err := LoadWithEnv("", envMap(nil))
	if err == nil {
		t.Fatal("expected error without a candidate id")
	}
	if !strings.Contains(err.Error(), EnvCandidateID) {
		t.Errorf("error should mention %s: %v", EnvCandidateID, err)
	}
}

func TestLoadFileWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
candidate_id: from-file
api:
  base_url: http://localhost:8080/api
  timeout: 5s
retry:
  max_attempts: 7
  base_delay: 250ms
journal:
  path: runs.db
telemetry:
  logging:
    level: debug
    format: json
`)

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		EnvCandidateID: "from-env",
		EnvLogLevel:    "WARN",
	}))
	if err != nil {
		t.Fatalf("LoadWithEnv failed: %v", err)
	}

	if cfg.CandidateID != "from-env" {
		t.Errorf("env should win over file, got %q", cfg.CandidateID)
	}
	if cfg.API.BaseURL != "http://localhost:8080/api" || cfg.API.Timeout != 5*time.Second {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Retry.MaxAttempts != 7 || cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("unexpected retry config: %+v", cfg.Retry)
	}
	if cfg.Journal.Path != "runs.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
	if cfg.Telemetry.Logging.Level != "warn" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Telemetry.Logging)
	}
	if cfg.Telemetry.ServiceName != "megaverse" {
		t.Errorf("telemetry defaults should survive a partial file, got %q", cfg.Telemetry.ServiceName)
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{
		EnvCandidateID: "cand",
		EnvAPIURL:      "http://127.0.0.1:9000",
		EnvJournal:     "/tmp/megaverse.db",
		EnvMaxAttempts: "2",
		EnvLogFormat:   "JSON",
	}))
	if err != nil {
		t.Fatalf("LoadWithEnv failed: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Journal.Path != "/tmp/megaverse.db" {
		t.Errorf("Journal.Path = %q", cfg.Journal.Path)
	}
	if cfg.Retry.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("Format = %q", cfg.Telemetry.Logging.Format)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantMsg string
	}{
		{
			name:    "non-integer attempts",
			env:     map[string]string{EnvCandidateID: "c", EnvMaxAttempts: "many"},
			wantMsg: "must be an integer",
		},
		{
			name:    "zero attempts",
			env:     map[string]string{EnvCandidateID: "c", EnvMaxAttempts: "0"},
			wantMsg: "MaxAttempts",
		},
		{
			name:    "excessive attempts",
			env:     map[string]string{EnvCandidateID: "c", EnvMaxAttempts: "40"},
			wantMsg: "Retry.MaxAttempts must be at most 32, got 40",
		},
		{
			name:    "bad url",
			env:     map[string]string{EnvCandidateID: "c", EnvAPIURL: "not a url"},
			wantMsg: "BaseURL must be a valid URL",
		},
		{
			name:    "bad log level",
			env:     map[string]string{EnvCandidateID: "c", EnvLogLevel: "loud"},
			wantMsg: "Level must be one of",
		},
		{
			name:    "negative base delay",
			env:     map[string]string{EnvCandidateID: "c"},
			file:    "retry:\n  max_attempts: 3\n  base_delay: -1s\n",
			wantMsg: "BaseDelay",
		},
		{
			name:    "malformed yaml",
			env:     map[string]string{EnvCandidateID: "c"},
			file:    "retry: [unclosed\n",
			wantMsg: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := LoadWithEnv(path, envMap(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), envMap(map[string]string{EnvCandidateID: "c"}))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestReadSkipsValidation(t *testing.T) {
	cfg, err := Read("", envMap(map[string]string{EnvJournal: "runs.db"}))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if cfg.CandidateID != "" || cfg.Journal.Path != "runs.db" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if err := Validate(cfg); err == nil {
		t.Error("expected Validate to reject a missing candidate id")
	}
}
