package backlog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	"github.com/thenoetrevino/projecthub/internal/models"
	backlogservice "github.com/thenoetrevino/projecthub/internal/services/backlog"
)

// ListCmd returns the backlog list subcommand
func ListCmd() *cobra.Command {
	var req backlogservice.ListItemsRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in order",
		Long: `List the items of the project backlog or of one sprint in their
current order. Filters are applied after ordering, then pagination.

Examples:
  projecthub backlog list --project p1
  projecthub backlog list --project p1 --sprint s1 --status todo
  projecthub backlog list --project p1 --page 1 --size 20 --json
`,
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	cmd.Flags().String("sprint", "", "Sprint ID; omit for the project backlog")
	cmd.Flags().String("status", "", "Only items with this status (todo, in_progress, done)")
	cmd.Flags().String("priority", "", "Only items with this priority (low, medium, high)")
	cmd.Flags().Int("page", 0, "Zero-based page number")
	cmd.Flags().Int("size", 0, "Page size; 0 lists everything")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		req.SprintID = optional(args.GetString("sprint", ""))
		page, err := args.CLI.App.BacklogService.ListItems(ctx, args.Caller, req)
		if err != nil {
			return nil, err
		}
		if args.GetBool("json") {
			return page, nil
		}
		return page.Items, nil
	}), func(cmd *cobra.Command) error {
		p := handler.NewFlagParser(cmd)
		if _, _, err := p.OutputFormats(); err != nil {
			return err
		}
		var err error
		if req.ProjectID, err = p.ParseProjectID(); err != nil {
			return err
		}
		if req.Page, err = p.ParseNonNegativeInt("page"); err != nil {
			return err
		}
		if req.Size, err = p.ParseNonNegativeInt("size"); err != nil {
			return err
		}
		if s, _ := cmd.Flags().GetString("status"); s != "" {
			status, err := models.ParseStatus(s)
			if err != nil {
				return err
			}
			req.Status = &status
		}
		if s, _ := cmd.Flags().GetString("priority"); s != "" {
			priority, err := models.ParsePriority(s)
			if err != nil {
				return err
			}
			req.Priority = &priority
		}
		return nil
	})

	return cmd
}
