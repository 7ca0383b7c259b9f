// Package sprint holds all cli commands related to sprints
//
// e.g., projecthub sprint ...
package sprint

import (
	"github.com/spf13/cobra"
)

// SprintCmd returns the sprint parent command
func SprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(EditCmd())
	cmd.AddCommand(StartCmd())
	cmd.AddCommand(CompleteCmd())
	cmd.AddCommand(SummaryCmd())

	return cmd
}
