// Package cli implements the promptkeep command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:           "promptkeep",
		Short:         "Local-first prompt vault with versioning and cloud backup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return app.close()
		},
	}
	root.PersistentFlags().StringVar(&app.cfgFile, "config", "", "path to config file")

	root.AddCommand(
		newListCmd(app),
		newSaveCmd(app),
		newShowCmd(app),
		newDeleteCmd(app),
		newRestoreCmd(app),
		newFavoriteCmd(app),
		newRunCmd(app),
		newSyncCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newLicenseCmd(app),
		newAPIKeyCmd(app),
		newWipeCmd(app),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
