package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDeleteCmd(app *App) *cobra.Command {
	var (
		hard bool
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Move a prompt to trash, or remove it permanently with --hard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.resolveID(ctx, args[0])
			if err != nil {
				return err
			}

			if !hard {
				if err := app.records.SoftDelete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "moved %s to trash (restore with 'promptkeep restore %s')\n",
					color.CyanString(shortID(id)), shortID(id))
				return nil
			}

			if !yes {
				return fmt.Errorf("permanent deletion cannot be undone, re-run with --yes to confirm")
			}
			if err := app.records.HardDelete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "permanently deleted %s\n", color.CyanString(shortID(id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "delete permanently and block resurrection via sync")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm permanent deletion")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a prompt from trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.records.Restore(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", color.CyanString(shortID(id)))
			return nil
		},
	}
}

func newFavoriteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <id>",
		Aliases: []string{"fav"},
		Short:   "Toggle a prompt's favorite flag",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			on, err := app.records.ToggleFavorite(ctx, id)
			if err != nil {
				return err
			}
			state := "removed from favorites"
			if on {
				state = "marked as favorite"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.CyanString(shortID(id)), state)
			return nil
		},
	}
}
