package backlog

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/handler"
)

// DeleteCmd returns the backlog delete subcommand
func DeleteCmd() *cobra.Command {
	var itemID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an item and its activity log",
	}

	cmd.Flags().String("id", "", "Item ID (required)")
	handler.AddCommonFlags(cmd)

	cmd.RunE = handler.Command(handler.HandlerFunc(func(ctx context.Context, args *handler.Arguments) (any, error) {
		if err := args.CLI.App.BacklogService.DeleteItem(ctx, args.Caller, itemID); err != nil {
			return nil, err
		}
		return deleted{ID: itemID}, nil
	}), func(cmd *cobra.Command) error {
		var err error
		itemID, err = handler.NewFlagParser(cmd).ParseString("id")
		return err
	})

	return cmd
}

type deleted struct {
	ID string `json:"id"`
}

func (d deleted) GetID() string { return d.ID }

func (d deleted) String() string { return "Deleted backlog item " + d.ID }
