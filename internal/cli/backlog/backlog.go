// Package backlog holds all cli commands related to backlog items
//
// e.g., projecthub backlog ...
package backlog

import (
	"github.com/spf13/cobra"
)

// BacklogCmd returns the backlog parent command
func BacklogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Manage ordered backlog items",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(MoveCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(ActivityCmd())

	return cmd
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
