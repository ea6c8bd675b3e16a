package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LoggingConfig{Level: "debug", Format: "json"})

	logger.NewComponentLogger("synchronizer").
		WithRunID("run-1").
		WithCell(2, 3, "soloon").
		WithError(errors.New("boom")).
		Warn("Rate limit reached")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	entry := lines[0]
	want := map[string]any{
		"level":     "warn",
		"component": "synchronizer",
		"run_id":    "run-1",
		"row":       float64(2),
		"column":    float64(3),
		"variant":   "soloon",
		"error":     "boom",
		"message":   "Rate limit reached",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LoggingConfig{Level: "warn", Format: "json"})

	logger.Debug("hidden")
	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	logger.Error("shown")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["message"] != "shown 2" {
		t.Errorf("unexpected first message %v", lines[0]["message"])
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LoggingConfig{Level: "info", Format: "json"})

	logger.WithFields(map[string]interface{}{"placed": 3, "calls": 5}).WithField("mode", "basic").Info("Run completed")

	entry := decodeLines(t, &buf)[0]
	if entry["placed"] != float64(3) || entry["calls"] != float64(5) || entry["mode"] != "basic" {
		t.Errorf("missing fields: %v", entry)
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LoggingConfig{Level: "info", Format: "json"})

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("expected message from context logger, got %q", buf.String())
	}

	// A bare context yields a logger that discards output.
	FromContext(context.Background()).Error("dropped")
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		if got := parseLogLevel(level).String(); got != level {
			t.Errorf("parseLogLevel(%q) = %s", level, got)
		}
	}
	if got := parseLogLevel("nonsense").String(); got != "info" {
		t.Errorf("unknown level should default to info, got %s", got)
	}
}
