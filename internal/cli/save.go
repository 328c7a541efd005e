package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/promptkeep/promptkeep/internal/services"
)

func newSaveCmd(app *App) *cobra.Command {
	var (
		id          string
		title       string
		content     string
		contentFile string
		testInput   string
		tags        []string
		favorite    bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a prompt or save a new version of an existing one",
		Long: `Create a prompt, or update one by id. Saving identical title, content,
test input and tags only touches metadata; any material change records the
previous state in the prompt's history and bumps its version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if id != "" {
				resolved, err := app.resolveID(ctx, id)
				if err != nil {
					return err
				}
				id = resolved
			}

			body, err := resolveContent(content, contentFile)
			if err != nil {
				return err
			}

			req := services.SaveRequest{
				ID:        id,
				Title:     title,
				Content:   body,
				TestInput: testInput,
				Tags:      tags,
			}
			if cmd.Flags().Changed("favorite") {
				req.IsFavorite = &favorite
			}
			if id != "" {
				// Unspecified fields keep their stored values.
				existing, err := app.records.Get(ctx, id)
				if err != nil {
					return err
				}
				if title == "" {
					req.Title = existing.Title
				}
				if body == "" && contentFile == "" {
					req.Content = existing.Content
				}
				if testInput == "" {
					req.TestInput = existing.TestInput
				}
				if tags == nil {
					req.Tags = existing.Tags
				}
				req.LastResult = existing.LastResult
			}

			if req.Title == "" {
				return fmt.Errorf("a title is required")
			}

			rec, err := app.records.Save(ctx, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s (v%d)\n",
				color.CyanString(shortID(rec.ID)), rec.Title, rec.Version)

			if app.cfg.SyncOnSave && app.sync != nil {
				app.sync.PushAsync()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "existing prompt id to update")
	cmd.Flags().StringVarP(&title, "title", "t", "", "prompt title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "prompt body ('-' reads stdin)")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read prompt body from file")
	cmd.Flags().StringVar(&testInput, "input", "", "sample input used when running the prompt")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma separated tags")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "mark as favorite")
	return cmd
}

func resolveContent(content, contentFile string) (string, error) {
	switch {
	case contentFile != "":
		b, err := os.ReadFile(contentFile)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(b), nil
	case content == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		return content, nil
	}
}
