package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	var withHistory bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a prompt, optionally with its version history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := app.resolveID(ctx, args[0])
			if err != nil {
				return err
			}
			rec, err := app.records.Get(ctx, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			title := color.New(color.Bold).Sprint(rec.Title)
			if rec.IsFavorite {
				title += " " + color.YellowString("*")
			}
			if rec.IsDeleted {
				title += " " + color.RedString("(trashed)")
			}
			fmt.Fprintln(out, title)
			fmt.Fprintf(out, "id:       %s\n", rec.ID)
			fmt.Fprintf(out, "version:  %d\n", rec.Version)
			fmt.Fprintf(out, "created:  %s\n", rec.CreatedAt.Local().Format(time.RFC822))
			fmt.Fprintf(out, "updated:  %s\n", rec.UpdatedAt.Local().Format(time.RFC822))
			if len(rec.Tags) > 0 {
				fmt.Fprintf(out, "tags:     %s\n", strings.Join(rec.Tags, ", "))
			}
			fmt.Fprintf(out, "\n%s\n", rec.Content)
			if rec.TestInput != "" {
				fmt.Fprintf(out, "\n%s\n%s\n", color.HiBlackString("-- test input --"), rec.TestInput)
			}
			if rec.LastResult != "" {
				fmt.Fprintf(out, "\n%s\n%s\n", color.HiBlackString("-- last result --"), rec.LastResult)
			}

			if withHistory {
				fmt.Fprintf(out, "\n%s\n", color.HiBlackString("-- history --"))
				if len(rec.History) == 0 {
					fmt.Fprintln(out, "no previous versions")
				}
				for i := len(rec.History) - 1; i >= 0; i-- {
					snap := rec.History[i]
					fmt.Fprintf(out, "v%d  %s  %s\n",
						snap.Version, snap.Timestamp.Local().Format(time.RFC822), snap.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHistory, "history", false, "include version history")
	return cmd
}
