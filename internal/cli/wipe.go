package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWipeCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every local prompt and tombstone",
		Long: `Delete every local prompt and tombstone. Settings, license and usage data
are kept. The cloud backup is not touched; running sync afterwards would
abort rather than overwrite it with an empty vault.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("wipe removes all local prompts, re-run with --yes to confirm")
			}
			if err := app.records.ClearAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "local prompts wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm wiping local data")
	return cmd
}
