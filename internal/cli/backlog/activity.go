package backlog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// ActivityCmd returns the backlog activity subcommand
func ActivityCmd() *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show an item's history, newest first",
	}

	cmd.Flags().String("id", "", "Item ID (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		return args.CLI.App.BacklogService.ListActivity(ctx, args.Caller, itemID)
	}), func(cmd *cobra.Command) error {
		var err error
		itemID, err = handler.NewFlagParser(cmd).ParseString("id")
		return err
	})

	return cmd
}
