package sprint

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	"github.com/thenoetrevino/projecthub/internal/models"
	sprintservice "github.com/thenoetrevino/projecthub/internal/services/sprint"
)

// EditCmd returns the sprint edit subcommand
func EditCmd() *cobra.Command {
	var (
		sprintID string
		req      sprintservice.EditSprintRequest
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the goal or dates of a sprint",
		Long: `Change the goal, start date or end date of a sprint. Only the flags
given are changed.

Examples:
  projecthub sprint edit --id s1 --goal "Ship the beta"
  projecthub sprint edit --id s1 --end 2026-03-20
`,
	}

	cmd.Flags().String("id", "", "Sprint ID (required)")
	cmd.Flags().String("goal", "", "New sprint goal")
	cmd.Flags().String("start", "", "New start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "New end date (YYYY-MM-DD)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		req.Goal = args.OptionalString("goal")
		return args.CLI.App.SprintService.EditSprint(ctx, args.Caller, sprintID, req)
	}), func(cmd *cobra.Command) error {
		var err error
		if sprintID, err = handler.NewFlagParser(cmd).ParseString("id"); err != nil {
			return err
		}
		if !cmd.Flags().Changed("goal") && !cmd.Flags().Changed("start") && !cmd.Flags().Changed("end") {
			return errors.New("at least one of --goal, --start or --end is required")
		}
		if req.StartDate, err = parseDate(cmd, "start"); err != nil {
			return err
		}
		req.EndDate, err = parseDate(cmd, "end")
		return err
	})

	return cmd
}

// StartCmd returns the sprint start subcommand
func StartCmd() *cobra.Command {
	return transitionCmd("start", "Start a sprint now",
		func(ctx context.Context, args *handler.Arguments, id string) (*models.Sprint, error) {
			return args.CLI.App.SprintService.StartSprint(ctx, args.Caller, id)
		})
}

// CompleteCmd returns the sprint complete subcommand
func CompleteCmd() *cobra.Command {
	return transitionCmd("complete", "Complete a sprint now",
		func(ctx context.Context, args *handler.Arguments, id string) (*models.Sprint, error) {
			return args.CLI.App.SprintService.CompleteSprint(ctx, args.Caller, id)
		})
}

func transitionCmd(use, short string, run func(context.Context, *handler.Arguments, string) (*models.Sprint, error)) *cobra.Command {
	var sprintID string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.Flags().String("id", "", "Sprint ID (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return run(ctx, args, sprintID)
	}), func(cmd *cobra.Command) error {
		var err error
		sprintID, err = handler.NewFlagParser(cmd).ParseString("id")
		return err
	})

	return cmd
}

// SummaryCmd returns the sprint summary subcommand
func SummaryCmd() *cobra.Command {
	var sprintID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count the done and open items of a sprint",
	}

	cmd.Flags().String("id", "", "Sprint ID (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.SprintService.Summarize(ctx, args.Caller, sprintID)
	}), func(cmd *cobra.Command) error {
		var err error
		sprintID, err = handler.NewFlagParser(cmd).ParseString("id")
		return err
	})

	return cmd
}
