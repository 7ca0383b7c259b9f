package project

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// SummaryCmd returns the project summary subcommand
func SummaryCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count the items of the active sprints by status",
		Long: `Count the items of every in-progress sprint of a project by status.
All counts are zero while no sprint is running.`,
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.SprintService.SummarizeActive(ctx, args.Caller, projectID)
	}), func(cmd *cobra.Command) error {
		var err error
		projectID, err = handler.NewFlagParser(cmd).ParseProjectID()
		return err
	})

	return cmd
}
