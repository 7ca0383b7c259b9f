package use

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/projecthub/internal/cli"
	"github.com/thenoetrevino/projecthub/internal/user"
)

// ProjectCmd returns the use project subcommand
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [project-id]",
		Short: "Set project context for current shell session",
		Long: `Set the current project context using environment variables.
This command outputs shell commands that should be evaluated:

  eval $(projecthub use project p1)        # Use project p1
  eval $(projecthub use project --clear)   # Clear project context
  projecthub use project --show            # Show current project

The PROJECTHUB_PROJECT environment variable will be set in your current shell
session only. The --project flag on other commands takes precedence over
this environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUseProject,
	}

	cmd.Flags().Bool("clear", false, "Clear the current project context")
	cmd.Flags().Bool("show", false, "Show the current project context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")
	cmd.Flags().String("as", "", "User ID to act as (defaults to the system username)")

	return cmd
}

func runUseProject(cmd *cobra.Command, args []string) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	showFlag, _ := cmd.Flags().GetBool("show")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if showFlag {
		return showCurrentProject(cmd)
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(stderr, "Would clear %s\n", cli.ProjectEnvVar)
			return nil
		}
		fmt.Fprintf(stdout, "unset %s\n", cli.ProjectEnvVar)
		fmt.Fprintf(stderr, "Cleared project context\n")
		return nil
	}

	if len(args) == 0 {
		return cli.UsageError(fmt.Errorf("project ID required\nUsage: eval $(projecthub use project <project-id>)"))
	}
	projectID := args[0]

	project, err := lookupProject(cmd, projectID)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Suggestion: Use 'projecthub project list' to see available projects\n")
		return err
	}

	if dryRun {
		fmt.Fprintf(stderr, "Would set %s=%s (%s)\n", cli.ProjectEnvVar, projectID, project)
		return nil
	}

	fmt.Fprintf(stdout, "export %s=%s\n", cli.ProjectEnvVar, projectID)
	fmt.Fprintf(stderr, "Now using project %s: %s\n", projectID, project)
	return nil
}

func showCurrentProject(cmd *cobra.Command) error {
	stdout := cmd.OutOrStdout()
	currentProject := os.Getenv(cli.ProjectEnvVar)
	if currentProject == "" {
		fmt.Fprintln(stdout, "No project context set")
		fmt.Fprintln(stdout, "Use 'eval $(projecthub use project <project-id>)' to set one")
		return nil
	}

	name, err := lookupProject(cmd, currentProject)
	if err != nil {
		fmt.Fprintf(stdout, "Current project: %s (%v)\n", currentProject, err)
		return nil
	}

	fmt.Fprintf(stdout, "Current project: %s (%s)\n", currentProject, name)
	return nil
}

// lookupProject returns the project's name, checking the caller can read it.
func lookupProject(cmd *cobra.Command, projectID string) (string, error) {
	cliInstance, err := cli.GetCLIFromContext(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("initialization error: %w", err)
	}
	defer func() {
		if err := cliInstance.Close(); err != nil {
			slog.Error("failed to close CLI", "error", err)
		}
	}()

	as, _ := cmd.Flags().GetString("as")
	project, err := cliInstance.App.ProjectService.GetProject(cmd.Context(), user.Caller(as), projectID)
	if err != nil {
		return "", err
	}
	return project.Name, nil
}
