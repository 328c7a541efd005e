package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/common"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge with the cloud backup and push the combined state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := app.requireSync()
			if err != nil {
				return err
			}

			res, err := svc.Sync(ctx)
			if err != nil {
				if errors.Is(err, common.ErrSafetyAbort) {
					return fmt.Errorf("%w\nthe cloud backup has prompts but this device has none after merging; "+
						"nothing was overwritten. Inspect the backup or use 'promptkeep import' to restore it", err)
				}
				if errors.Is(err, common.ErrAuthExpired) {
					return fmt.Errorf("%w, update the backup credentials in your config", err)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s merged %d, pushed %d\n",
				color.GreenString("sync complete:"), res.MergedCount, res.Pushed)

			// A merge may have brought a license key from another device.
			if app.cfg.License.ServerURL != "" {
				app.license.RefreshAsync()
			}
			return nil
		},
	}
}
