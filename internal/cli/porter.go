package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/filex"
)

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole vault as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.porter.Export(cmd.Context())
			if err != nil {
				return err
			}
			data, err := env.Encode()
			if err != nil {
				return err
			}

			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := filex.WriteFileAtomic(out, data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d prompts to %s\n", len(env.Prompts), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace local prompts with the contents of an export file",
		Long: `Replace all local prompts with the contents of an export file. Existing
prompts are removed first; the usage counter only moves up and a license key
in the file replaces the local one. Accepts current exports and the legacy
bare-array format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("import replaces every local prompt, re-run with --yes to confirm")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			applied, err := app.porter.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d prompts\n", color.GreenString("imported"), applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm replacing local data")
	return cmd
}
