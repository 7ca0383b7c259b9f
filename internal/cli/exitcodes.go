package cli

import (
	"errors"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates a general error occurred.
	// Use for: Database errors, network errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitGeneralError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or when the user needs to provide different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: backlog item, sprint, project or member not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: a backlog chain that can no longer be reconstructed.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid priority values, invalid status, positions out of
	// range, or any case where input fails validation rules.
	ExitValidation = 5

	// ExitPermission indicates the caller may not perform the operation.
	ExitPermission = 6
)

// ExitCodeFor maps an error to the exit code the process should end with.
func ExitCodeFor(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, models.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		return ExitValidation
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrForbidden):
		return ExitPermission
	case errors.Is(err, models.ErrChainCorrupted):
		return ExitDataErr
	default:
		return ExitGeneralError
	}
}

// ErrorCode is the machine-readable code printed in JSON error output.
func ErrorCode(err error) string {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr) && exitErr.Code == ExitUsage:
		return "USAGE_ERROR"
	case errors.Is(err, models.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, models.ErrInvalidArgument):
		return "VALIDATION_ERROR"
	case errors.Is(err, models.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, models.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, models.ErrChainCorrupted):
		return "CHAIN_CORRUPTED"
	default:
		return "INTERNAL_ERROR"
	}
}

// ExitError carries an explicit exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError marks err as a usage mistake.
func UsageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}
