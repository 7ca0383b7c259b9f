package backlog

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	"github.com/thenoetrevino/projecthub/internal/models"
	backlogservice "github.com/thenoetrevino/projecthub/internal/services/backlog"
)

// UpdateCmd returns the backlog update subcommand
func UpdateCmd() *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit fields of a backlog item",
		Long: `Edit the title, status, priority, point or assignee of an item.
Only the flags given are changed; each change is recorded in the item's
activity log. Use 'backlog move' to change the order.

Examples:
  projecthub backlog update --id abc --status in_progress --point 3
  projecthub backlog update --id abc --assignee u-42
`,
	}

	cmd.Flags().String("id", "", "Item ID (required)")
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("status", "", "New status (todo, in_progress, done)")
	cmd.Flags().String("priority", "", "New priority (low, medium, high)")
	cmd.Flags().Int("point", 0, "New story point estimate")
	cmd.Flags().String("assignee", "", "New assignee user ID (must be a project member)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		req := backlogservice.UpdateItemRequest{
			Title:      args.OptionalString("title"),
			Point:      args.OptionalInt("point"),
			AssigneeID: args.OptionalString("assignee"),
		}
		if s := args.OptionalString("status"); s != nil {
			status := models.Status(*s)
			req.Status = &status
		}
		if s := args.OptionalString("priority"); s != nil {
			priority := models.Priority(*s)
			req.Priority = &priority
		}
		return args.CLI.App.BacklogService.UpdateItem(ctx, args.Caller, itemID, req)
	}), func(cmd *cobra.Command) error {
		var err error
		if itemID, err = handler.NewFlagParser(cmd).ParseString("id"); err != nil {
			return err
		}
		for _, name := range []string{"title", "status", "priority", "point", "assignee"} {
			if cmd.Flags().Changed(name) {
				return nil
			}
		}
		return errors.New("nothing to update: pass at least one of --title, --status, --priority, --point, --assignee")
	})

	return cmd
}
