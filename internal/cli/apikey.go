package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/generate"
)

func newAPIKeyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage model provider API keys",
	}

	set := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store the API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			known := false
			for _, p := range generate.Providers() {
				if p.ID == provider {
					known = true
					break
				}
			}
			if !known {
				return fmt.Errorf("unknown provider %q, see 'promptkeep apikey list'", provider)
			}

			key, err := readSecret(fmt.Sprintf("%s API key: ", provider))
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("empty API key")
			}
			if err := app.settings.SetAPIKey(cmd.Context(), provider, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored key for %s\n", provider)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List providers and whether a key is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := app.settings.APIKeyProviders(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(stored)
			has := make(map[string]bool, len(stored))
			for _, p := range stored {
				has[p] = true
			}

			out := cmd.OutOrStdout()
			for _, p := range generate.Providers() {
				mark := color.HiBlackString("no key")
				if has[p.ID] {
					mark = color.GreenString("key stored")
				}
				fmt.Fprintf(out, "%-10s %-10s %s\n", p.ID, mark, color.HiBlackString(p.DefaultModel))
			}
			return nil
		},
	}

	cmd.AddCommand(set, list)
	return cmd
}
