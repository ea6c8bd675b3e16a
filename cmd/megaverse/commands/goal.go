package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGoalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Fetch and print the goal map",
		Long: `Fetch the goal map for the configured candidate and print it, one row
per line. Nothing is placed.`,
		Example: `  # Print the goal map
  megaverse goal

  # Print it as JSON
  megaverse goal --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			env, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer env.Close()
			ctx := cmd.Context()

			grid, err := env.synchronizer(ctx).FetchGoal(ctx)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd, grid)
			}
			fmt.Fprintln(cmd.OutOrStdout(), grid.String())
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d rows, %d cells to place\n", grid.Rows(), grid.Count())
			return nil
		},
	}

	return cmd
}
