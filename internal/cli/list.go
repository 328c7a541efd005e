package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var (
		trash     bool
		favorites bool
		tag       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored prompts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			shown := 0
			for _, rec := range app.records.GetAll(cmd.Context()) {
				if rec.IsDeleted != trash {
					continue
				}
				if favorites && !rec.IsFavorite {
					continue
				}
				if tag != "" && !slices.Contains(rec.Tags, tag) {
					continue
				}

				marker := " "
				if rec.IsFavorite {
					marker = color.YellowString("*")
				}
				line := fmt.Sprintf("%s %s  v%-3d %s",
					color.CyanString(shortID(rec.ID)), marker, rec.Version, rec.Title)
				if len(rec.Tags) > 0 {
					line += "  " + color.HiBlackString("[%s]", strings.Join(rec.Tags, ", "))
				}
				fmt.Fprintln(out, line)
				shown++
			}

			if shown == 0 {
				fmt.Fprintln(out, "no prompts found")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trash, "trash", false, "show soft-deleted prompts instead")
	cmd.Flags().BoolVar(&favorites, "favorites", false, "only favorites")
	cmd.Flags().StringVar(&tag, "tag", "", "only prompts carrying this tag")
	return cmd
}
