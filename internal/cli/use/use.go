// Package use holds all cli commands related to setting contextual information
// e.g., projecthub use ...
package use

import (
	"github.com/spf13/cobra"
)

// UseCmd returns the use parent command
func UseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Manage contextual settings for the current shell",
		Long: `Set and manage contextual information for the current shell session.

The 'use' command allows you to set persistent context that applies to
subsequent commands, eliminating the need to repeatedly specify flags.

Available contexts:
  - project: Set the current project context

Examples:
  eval $(projecthub use project p1)      # Use project p1
  eval $(projecthub use project --clear) # Clear project context
  projecthub use project --show          # Show current project`,
	}

	cmd.AddCommand(ProjectCmd())

	return cmd
}
