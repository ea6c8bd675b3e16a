package commands

import (
	"fmt"

	"github.com/megaverse/megaverse/pkg/stores"
	"github.com/spf13/cobra"
)

func newRunsCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List journaled runs",
		Long: `List runs recorded in the SQLite journal, newest first. With a run id,
show that run's summary and the outcome of every cell it touched.

The journal path comes from --journal, MEGAVERSE_JOURNAL, or the config file.`,
		Example: `  # List the last 20 runs
  megaverse runs --journal megaverse.db

  # Show one run
  megaverse runs 6f1c... --journal megaverse.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			store, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0])
			}

			runs, err := store.ListRuns(ctx, limit, offset)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-4s  %-9s  %5s  %s\n", "ID", "MODE", "STATUS", "CELLS", "STARTED")
			for _, r := range runs {
				fmt.Fprintf(out, "%-36s  %-4d  %-9s  %5d  %s\n",
					r.ID, r.Mode, r.Status, r.Cells, r.StartedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")

	cmd.AddCommand(newRunsDeleteCommand())

	return cmd
}

func newRunsDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <run-id>...",
		Short: "Delete journaled runs",
		Long:  `Delete runs and their placement history from the SQLite journal.`,
		Example: `  # Delete one run
  megaverse runs delete 6f1c... --journal megaverse.db`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			ctx := cmd.Context()

			store, err := openJournal(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.DeleteRun(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
			}
			return nil
		},
	}

	return cmd
}

// openJournal opens the configured journal. Reading the journal does not
// need API credentials, so the config is not validated.
func openJournal(cmd *cobra.Command) (*stores.SQLiteStore, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("no journal configured (use --journal or MEGAVERSE_JOURNAL)")
	}

	store, err := stores.Open(cmd.Context(), cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}

func showRun(cmd *cobra.Command, store *stores.SQLiteStore, id string) error {
	ctx := cmd.Context()

	summary, err := store.Summarize(ctx, id)
	if err != nil {
		return err
	}
	placements, err := store.ListPlacements(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, struct {
			Summary    *stores.RunSummary  `json:"summary"`
			Placements []*stores.Placement `json:"placements"`
		}{summary, placements})
	}

	out := cmd.OutOrStdout()
	run := summary.Run
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Mode:      %d\n", run.Mode)
	fmt.Fprintf(out, "Status:    %s\n", run.Status)
	fmt.Fprintf(out, "Cells:     %d (succeeded %d, failed %d, calls %d)\n",
		run.Cells, summary.Succeeded, summary.Failed, summary.Calls)
	if run.Error != nil {
		fmt.Fprintf(out, "Error:     %s\n", *run.Error)
	}
	fmt.Fprintln(out)

	for _, p := range placements {
		attr := ""
		if p.Attribute != nil {
			attr = "[" + *p.Attribute + "]"
		}
		line := fmt.Sprintf("(%d,%d) %s%s %s %s attempts=%d",
			p.Row, p.Column, p.Variant, attr, p.Operation, p.State, p.Attempts)
		if p.Error != nil {
			line += " error=" + *p.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
