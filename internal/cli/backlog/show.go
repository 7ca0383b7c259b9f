package backlog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// ShowCmd returns the backlog show subcommand
func ShowCmd() *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one backlog item",
	}

	cmd.Flags().String("id", "", "Item ID (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.BacklogService.GetItem(ctx, args.Caller, itemID)
	}), func(cmd *cobra.Command) error {
		var err error
		itemID, err = handler.NewFlagParser(cmd).ParseString("id")
		return err
	})

	return cmd
}
