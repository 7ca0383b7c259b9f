package project

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the projects you belong to",
	}
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.SimpleCommand(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.ProjectService.ListProjects(ctx, args.Caller)
	}))

	return cmd
}
