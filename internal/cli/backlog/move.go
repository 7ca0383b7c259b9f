package backlog

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	backlogservice "github.com/thenoetrevino/projecthub/internal/services/backlog"
)

// MoveCmd returns the backlog move subcommand
func MoveCmd() *cobra.Command {
	var (
		itemID string
		index  int
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Reorder an item or move it between the backlog and sprints",
		Long: `Move an item to a zero-based position of a container. The position
counts the target's items without the moved one, so it ranges from 0 (first)
to the target's length (last).

Examples:
  # Move to the top of the project backlog
  projecthub backlog move --id abc --index 0

  # Move into sprint s1 as its third item
  projecthub backlog move --id abc --to s1 --index 2
`,
	}

	cmd.Flags().String("id", "", "Item ID (required)")
	cmd.Flags().String("to", "backlog", "Target sprint ID, or 'backlog'")
	cmd.Flags().Int("index", 0, "Zero-based target position")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		req := backlogservice.ReorderRequest{InsertPosition: index}
		if to := strings.TrimSpace(args.GetString("to", "backlog")); to != "" && !strings.EqualFold(to, "backlog") {
			req.TargetSprintID = &to
		}
		return args.CLI.App.BacklogService.ReorderItem(ctx, args.Caller, itemID, req)
	}), func(cmd *cobra.Command) error {
		var err error
		if itemID, err = handler.NewFlagParser(cmd).ParseString("id"); err != nil {
			return err
		}
		// range checks belong to the service, which knows the target length
		index, err = cmd.Flags().GetInt("index")
		return err
	})

	return cmd
}
