package project

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
	"github.com/thenoetrevino/projecthub/internal/models"
	projectservice "github.com/thenoetrevino/projecthub/internal/services/project"
)

// MemberCmd returns the project member command group
func MemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage project membership",
	}

	cmd.AddCommand(memberAddCmd())
	cmd.AddCommand(memberListCmd())

	return cmd
}

func memberAddCmd() *cobra.Command {
	var req projectservice.AddMemberRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member or change their role",
		Long: `Grant a user a role in a project. Only product owners may manage
membership.

Examples:
  projecthub project member add --project p1 --user u-42 --role developer
`,
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	cmd.Flags().String("user", "", "User ID (required)")
	cmd.Flags().String("role", "developer", "product_owner, scrum_master or developer")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.ProjectService.AddMember(ctx, args.Caller, req)
	}), func(cmd *cobra.Command) error {
		p := handler.NewFlagParser(cmd)
		var err error
		if req.ProjectID, err = p.ParseProjectID(); err != nil {
			return err
		}
		if req.UserID, err = p.ParseString("user"); err != nil {
			return err
		}
		role, _ := cmd.Flags().GetString("role")
		req.Role, err = models.ParseRole(role)
		return err
	})

	return cmd
}

func memberListCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List project members",
	}

	cmd.Flags().String("project", "", "Project ID (or PROJECTHUB_PROJECT)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.ProjectService.ListMembers(ctx, args.Caller, projectID)
	}), func(cmd *cobra.Command) error {
		var err error
		projectID, err = handler.NewFlagParser(cmd).ParseProjectID()
		return err
	})

	return cmd
}
