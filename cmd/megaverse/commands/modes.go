package commands

import (
	"fmt"

	"github.com/megaverse/megaverse/pkg/engine"
	"github.com/spf13/cobra"
)

func newModesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List supported run modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				type mode struct {
					ID          int    `json:"id"`
					Name        string `json:"name"`
					Description string `json:"description"`
				}
				modes := []mode{}
				for _, m := range engine.SupportedModes() {
					modes = append(modes, mode{ID: int(m), Name: m.String(), Description: m.Description()})
				}
				return printJSON(cmd, modes)
			}
			fmt.Fprint(cmd.OutOrStdout(), modeTable())
			return nil
		},
	}

	return cmd
}
