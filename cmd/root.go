package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli/backlog"
	"github.com/thenoetrevino/projecthub/internal/cli/project"
	"github.com/thenoetrevino/projecthub/internal/cli/serve"
	"github.com/thenoetrevino/projecthub/internal/cli/sprint"
	"github.com/thenoetrevino/projecthub/internal/cli/use"
)

var rootCmd = &cobra.Command{
	Use:   "projecthub",
	Short: "ProjectHub - ordered backlogs and sprints",
	Long: `ProjectHub keeps each project's backlog and sprints as ordered lists
that can be rearranged, and serves them over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(backlog.BacklogCmd())
	rootCmd.AddCommand(sprint.SprintCmd())
	rootCmd.AddCommand(project.ProjectCmd())
	rootCmd.AddCommand(use.UseCmd())
	rootCmd.AddCommand(serve.ServeCmd())
	rootCmd.AddCommand(serve.MigrateCmd())
}

func Execute() error {
	return rootCmd.Execute()
}
