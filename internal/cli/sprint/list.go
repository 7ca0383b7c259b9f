package sprint

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// ListCmd returns the sprint list subcommand
func ListCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the sprints of a project",
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.SprintService.ListSprints(ctx, args.Caller, projectID)
	}), func(cmd *cobra.Command) error {
		var err error
		projectID, err = handler.NewFlagParser(cmd).ParseProjectID()
		return err
	})

	return cmd
}
