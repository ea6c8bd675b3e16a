package commands

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/megaverse/megaverse/pkg/engine"
	"github.com/megaverse/megaverse/pkg/stores"
	"github.com/megaverse/megaverse/pkg/telemetry"
	"github.com/spf13/cobra"
)

func executeForTest(t *testing.T, args ...string) (string, error) {
	t.Helper()

	jsonOutput = false
	cmd := newRootCommand("test", "none", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		arg     string
		want    engine.RunMode
		wantErr string
	}{
		{arg: "1", want: engine.ModeBasic},
		{arg: "2", want: engine.ModeAttributed},
		{arg: "3", wantErr: "not supported"},
		{arg: "two", wantErr: "must be an integer"},
		{arg: "", wantErr: "must be an integer"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseMode(tt.arg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseMode(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestRootRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing", args: nil, want: "supported modes: 1, 2"},
		{name: "non-integer", args: []string{"basic"}, want: "supported modes: 1, 2"},
		{name: "unsupported", args: []string{"7"}, want: "not supported"},
		{name: "too many", args: []string{"1", "2"}, want: "supported modes: 1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeForTest(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			if !strings.Contains(out, "Usage:") {
				t.Errorf("expected usage output, got %q", out)
			}
		})
	}
}

func TestModesCommand(t *testing.T) {
	out, err := executeForTest(t, "modes")
	if err != nil {
		t.Fatalf("modes failed: %v", err)
	}
	for _, want := range []string{"1  basic", "2  attributed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestRemoveRejectsNonIntegerPosition(t *testing.T) {
	_, err := executeForTest(t, "remove", "polyanet", "x", "1")
	if err == nil || !strings.Contains(err.Error(), "row must be an integer") {
		t.Fatalf("expected row error, got %v", err)
	}
}

func TestRunsRequiresJournal(t *testing.T) {
	t.Setenv("MEGAVERSE_JOURNAL", "")
	journalPath = ""

	_, err := executeForTest(t, "runs")
	if err == nil || !strings.Contains(err.Error(), "no journal configured") {
		t.Fatalf("expected journal error, got %v", err)
	}
}

func TestRunsDeleteRemovesRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	store, err := stores.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"run-1", "run-2"} {
		if err := store.BeginRun(ctx, engine.RunRecord{ID: id, Mode: engine.ModeBasic, Cells: 1, StartedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	store.Close()

	out, err := executeForTest(t, "runs", "delete", "run-1", "--journal", path)
	if err != nil {
		t.Fatalf("runs delete failed: %v", err)
	}
	if !strings.Contains(out, "Deleted run run-1") {
		t.Errorf("unexpected output %q", out)
	}

	store, err = stores.Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.GetRun(ctx, "run-1"); err == nil {
		t.Error("expected run-1 to be gone")
	}
	if _, err := store.GetRun(ctx, "run-2"); err != nil {
		t.Errorf("run-2 should remain: %v", err)
	}

	if _, err := executeForTest(t, "runs", "delete", "run-1", "--journal", path); err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("expected not found for a deleted run, got %v", err)
	}
	if _, err := executeForTest(t, "runs", "delete", "--journal", path); err == nil {
		t.Error("expected an error without run ids")
	}
}

func TestSetupReleasesTelemetryOnFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	t.Setenv("CANDIDATE_ID", "cand")
	t.Setenv("MEGAVERSE_JOURNAL", "")
	configPath = ""
	maxAttempts = 0
	metricsAddr = addr
	journalPath = filepath.Join(t.TempDir(), "missing", "journal.db")
	t.Cleanup(func() {
		metricsAddr = ""
		journalPath = ""
	})

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	if _, err := setup(cmd, true); err == nil || !strings.Contains(err.Error(), "failed to open journal") {
		t.Fatalf("expected journal error, got %v", err)
	}

	// The metrics listener started before the failure is closed.
	l, err = net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("metrics address still bound: %v", err)
	}
	l.Close()
}

func TestSetupPutsTelemetryOnContext(t *testing.T) {
	t.Setenv("CANDIDATE_ID", "cand")
	t.Setenv("MEGAVERSE_JOURNAL", "")
	configPath = ""
	maxAttempts = 0
	metricsAddr = ""
	journalPath = ""

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	env, err := setup(cmd, true)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer env.Close()

	if got := telemetry.FromTelemetryContext(cmd.Context()); got != env.tel {
		t.Errorf("expected command context to carry the environment telemetry")
	}
	if telemetry.FromContext(cmd.Context()) != env.tel.Logger {
		t.Error("expected command context to carry the telemetry logger")
	}
	if env.store != nil {
		t.Error("no journal should be opened without a path")
	}
}
