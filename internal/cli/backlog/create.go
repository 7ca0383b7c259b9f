package backlog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	backlogservice "github.com/thenoetrevino/projecthub/internal/services/backlog"
)

// CreateCmd returns the backlog create subcommand
func CreateCmd() *cobra.Command {
	var projectID, title string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append a new item to the backlog or a sprint",
		Long: `Create a backlog item. New items are appended at the end of their
container.

Examples:
  # Append to the project backlog
  projecthub backlog create --project p1 --title "Login page"

  # Append to a sprint, printing only the new ID
  ITEM=$(projecthub backlog create --project p1 --sprint s1 --title "Logout" --quiet)
`,
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	cmd.Flags().String("title", "", "Item title (required)")
	cmd.Flags().String("sprint", "", "Sprint ID; omit for the project backlog")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.BacklogService.CreateItem(ctx, args.Caller, backlogservice.CreateItemRequest{
			ProjectID: projectID,
			Title:     title,
			SprintID:  optional(args.GetString("sprint", "")),
		})
	}), func(cmd *cobra.Command) error {
		p := handler.NewFlagParser(cmd)
		if _, _, err := p.OutputFormats(); err != nil {
			return err
		}
		var err error
		if projectID, err = p.ParseProjectID(); err != nil {
			return err
		}
		title, err = p.ParseString("title")
		return err
	})

	return cmd
}
