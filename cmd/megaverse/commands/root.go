package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/megaverse/megaverse/pkg/engine"
	"github.com/megaverse/megaverse/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath  string
	maxAttempts int
	journalPath string
	metricsAddr string
	jsonOutput  bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "megaverse <mode>",
		Short: "Megaverse - goal map synchronizer",
		Long: `Megaverse reproduces a goal map on the remote megaverse service.

The goal map is fetched once and every cell is placed in row-major order.
Rate-limited placements are retried with exponential backoff; any other
error stops the run.

Run modes:
` + modeTable(),
		Example: `  # Place the goal map using bare labels
  CANDIDATE_ID=... megaverse 1

  # Place a map with attributed labels and journal the run
  megaverse 2 --journal megaverse.db

  # Allow more retries per cell
  megaverse 2 --max-attempts 8`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		Args:    modeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := parseMode(args[0])
			cmd.SilenceUsage = true
			return runSync(cmd, mode)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0, "calls per cell before giving up on rate limits (default from config)")
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", "", "SQLite run journal path (default from config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newGoalCommand())
	rootCmd.AddCommand(newRemoveCommand())
	rootCmd.AddCommand(newRunsCommand())
	rootCmd.AddCommand(newModesCommand())

	return rootCmd
}

// modeArgs accepts exactly one supported run-mode identifier.
func modeArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return fmt.Errorf("%w (supported modes: %s)", err, modeIDs())
	}
	_, err := parseMode(args[0])
	return err
}

func parseMode(arg string) (engine.RunMode, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("run mode must be an integer, got %q (supported modes: %s)", arg, modeIDs())
	}
	return engine.LookupMode(id)
}

func modeIDs() string {
	ids := make([]string, 0, len(engine.SupportedModes()))
	for _, m := range engine.SupportedModes() {
		ids = append(ids, strconv.Itoa(int(m)))
	}
	return strings.Join(ids, ", ")
}

func modeTable() string {
	var b strings.Builder
	for _, m := range engine.SupportedModes() {
		fmt.Fprintf(&b, "  %d  %-10s  %s\n", int(m), m, m.Description())
	}
	return b.String()
}

func runSync(cmd *cobra.Command, mode engine.RunMode) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()
	ctx := cmd.Context()

	telemetry.FromContext(ctx).WithFields(map[string]interface{}{
		"mode":         mode.String(),
		"max_attempts": env.cfg.Retry.MaxAttempts,
		"journal":      env.cfg.Journal.Path,
	}).Info("Synchronizing goal map")

	result, err := env.synchronizer(ctx).Run(ctx, mode, env.cfg.Retry.MaxAttempts)
	if result != nil {
		printResult(cmd, result)
	}
	return err
}

func printResult(cmd *cobra.Command, result *engine.RunResult) {
	if jsonOutput {
		_ = printJSON(cmd, result)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Run %s %s: placed %d, skipped %d, calls %d in %s\n",
		result.RunID, result.Status, result.Placed, result.Skipped, result.Calls,
		result.Duration.Round(time.Millisecond))
}
