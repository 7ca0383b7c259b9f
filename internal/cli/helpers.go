package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ProjectEnvVar holds the project selected with `projecthub use project`.
const ProjectEnvVar = "PROJECTHUB_PROJECT"

// GetProjectID returns the --project flag, falling back to ProjectEnvVar.
func GetProjectID(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Lookup("project") != nil {
		if id, _ := cmd.Flags().GetString("project"); strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id), nil
		}
	}
	if id := strings.TrimSpace(os.Getenv(ProjectEnvVar)); id != "" {
		return id, nil
	}
	return "", errors.New("no project specified: use --project or set " + ProjectEnvVar)
}

// Report prints err through the formatter and hands it back for RunE as an
// *ExitError, so main knows it was already shown.
func Report(formatter *OutputFormatter, err error) error {
	if err == nil {
		return nil
	}
	if fmtErr := formatter.Error(ErrorCode(err), err.Error()); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error formatting error message: %v\n", fmtErr)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: ExitCodeFor(err), Err: err}
}
