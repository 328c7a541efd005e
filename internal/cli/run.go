package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/generate"
	"github.com/promptkeep/promptkeep/internal/services"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		provider string
		model    string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a prompt against a model and store the result",
		Long: `Run a prompt against a hosted model, using the prompt body as the system
message and its test input as the user message. The output is stored as the
prompt's last result. Without an active license a fixed number of trial runs
is available.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.resolveID(ctx, args[0])
			if err != nil {
				return err
			}

			if input != "" {
				rec, err := app.records.Get(ctx, id)
				if err != nil {
					return err
				}
				if _, err := app.records.Save(ctx, services.SaveRequest{
					ID: id, Title: rec.Title, Content: rec.Content,
					TestInput: input, LastResult: rec.LastResult, Tags: rec.Tags,
				}); err != nil {
					return err
				}
			}

			if provider == "" {
				provider = app.cfg.Provider
			}
			apiKey, err := app.settings.APIKey(ctx, provider)
			if err != nil {
				return err
			}
			if apiKey == "" {
				return fmt.Errorf("no API key stored for %q, add one with 'promptkeep apikey set %s'",
					provider, provider)
			}
			gen, err := generate.NewChatClient(provider, apiKey, model)
			if err != nil {
				return err
			}

			runner := services.NewRunService(app.records, app.entitlement, gen, app.log)
			out, err := runner.Run(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if dec, err := app.entitlement.CanPerform(ctx); err == nil && dec.Remaining >= 0 {
				fmt.Fprintln(cmd.ErrOrStderr(),
					color.HiBlackString("%d trial runs remaining", dec.Remaining))
			}
			if app.cfg.SyncOnSave && app.sync != nil {
				app.sync.PushAsync()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "model provider (defaults to config)")
	cmd.Flags().StringVar(&model, "model", "", "model name (defaults to provider default)")
	cmd.Flags().StringVar(&input, "input", "", "replace the stored test input before running")
	return cmd
}
