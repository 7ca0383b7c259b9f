package project

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	projectservice "github.com/thenoetrevino/projecthub/internal/services/project"
)

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project. The creator becomes its product owner.

Examples:
  # Simple project (human-readable output)
  projecthub project create --name "Backend API"

  # Quiet mode for bash capture
  PROJECT_ID=$(projecthub project create --name "Backend API" --quiet)
`,
	}

	cmd.Flags().String("name", "", "Project name (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.ProjectService.CreateProject(ctx, args.Caller, projectservice.CreateProjectRequest{Name: name})
	}), func(cmd *cobra.Command) error {
		var err error
		name, err = handler.NewFlagParser(cmd).ParseString("name")
		return err
	})

	return cmd
}
