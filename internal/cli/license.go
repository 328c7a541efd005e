package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/models"
	"github.com/promptkeep/promptkeep/internal/services"
)

func newLicenseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Manage the license for unlimited runs",
	}
	cmd.AddCommand(newLicenseActivateCmd(app), newLicenseStatusCmd(app))
	return cmd
}

func newLicenseActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate [key]",
		Short: "Store a license key and verify it with the license server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.License.ServerURL == "" {
				return fmt.Errorf("license.server_url is not configured")
			}

			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				var err error
				key, err = readSecret("license key: ")
				if err != nil {
					return err
				}
			}
			if key == "" {
				return fmt.Errorf("empty license key")
			}

			ok, err := app.license.Activate(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("verify license: %w", err)
			}
			if !ok {
				return fmt.Errorf("license key was rejected by the license server")
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("license activated"))
			return nil
		},
	}
}

func newLicenseStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the cached license state and trial usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			key, status, err := app.license.Status(ctx)
			if err != nil {
				return err
			}
			switch {
			case key == "":
				fmt.Fprintln(out, "license:  none")
			case status == models.LicenseActive:
				fmt.Fprintf(out, "license:  %s (%s)\n", maskKey(key), color.GreenString("active"))
			default:
				fmt.Fprintf(out, "license:  %s (%s)\n", maskKey(key), color.RedString("inactive"))
			}

			count, err := app.usage.Get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "runs:     %d\n", count)
			if status != models.LicenseActive {
				remaining := int64(services.TrialCeiling) - count
				if remaining < 0 {
					remaining = 0
				}
				fmt.Fprintf(out, "trial:    %d of %d runs left\n", remaining, services.TrialCeiling)
			}
			return nil
		},
	}
}
