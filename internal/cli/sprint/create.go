package sprint

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	sprintservice "github.com/thenoetrevino/projecthub/internal/services/sprint"
)

// CreateCmd returns the sprint create subcommand
func CreateCmd() *cobra.Command {
	var req sprintservice.CreateSprintRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sprint",
		Long: `Create a sprint in a project. Requires the product owner or scrum
master role.

Examples:
  projecthub sprint create --project p1 --name "Sprint 1" --start 2026-03-02 --end 2026-03-16
`,
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	cmd.Flags().String("name", "", "Sprint name (required)")
	cmd.Flags().String("goal", "", "Sprint goal")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		req.Goal = args.GetString("goal", "")
		return args.CLI.App.SprintService.CreateSprint(ctx, args.Caller, req)
	}), func(cmd *cobra.Command) error {
		p := handler.NewFlagParser(cmd)
		var err error
		if req.ProjectID, err = p.ParseProjectID(); err != nil {
			return err
		}
		if req.Name, err = p.ParseString("name"); err != nil {
			return err
		}
		if req.StartDate, err = parseDate(cmd, "start"); err != nil {
			return err
		}
		req.EndDate, err = parseDate(cmd, "end")
		return err
	})

	return cmd
}

func parseDate(cmd *cobra.Command, flag string) (*time.Time, error) {
	v, _ := cmd.Flags().GetString(flag)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, fmt.Errorf("--%s must be YYYY-MM-DD: %w", flag, err)
	}
	return &t, nil
}
