package commands

import (
	"fmt"
	"strconv"

	"github.com/megaverse/megaverse/pkg/telemetry"
	"github.com/spf13/cobra"
)

func newRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <variant> <row> <column>",
		Short: "Remove a single object",
		Long: `Delete the object of the given variant at (row, column). Rate-limited
responses are retried the same way placements are.`,
		Example: `  # Remove a polyanet
  megaverse remove polyanet 2 2

  # Remove a cometh with a larger retry budget
  megaverse remove cometh 4 7 --max-attempts 8`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := args[0]
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("row must be an integer, got %q", args[1])
			}
			column, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("column must be an integer, got %q", args[2])
			}
			cmd.SilenceUsage = true

			env, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()
			ctx := cmd.Context()

			telemetry.FromContext(ctx).
				WithCell(row, column, variant).
				Info("Removing object")

			if err := env.synchronizer(ctx).Remove(ctx, variant, row, column, env.cfg.Retry.MaxAttempts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s at (%d,%d)\n", variant, row, column)
			return nil
		},
	}

	return cmd
}
