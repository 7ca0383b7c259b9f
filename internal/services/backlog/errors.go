package backlog

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Backlog errors. Each wraps the shared taxonomy so callers can classify
// them with errors.Is against models.Err*.
var (
	// Validation errors
	ErrEmptyTitle         = fmt.Errorf("%w: title cannot be empty", models.ErrInvalidArgument)
	ErrTitleTooLong       = fmt.Errorf("%w: title cannot exceed %d characters", models.ErrInvalidArgument, models.MaxTitleLength)
	ErrNegativePoint      = fmt.Errorf("%w: point cannot be negative", models.ErrInvalidArgument)
	ErrInvalidItemID      = fmt.Errorf("%w: invalid backlog item ID", models.ErrInvalidArgument)
	ErrInvalidProjectID   = fmt.Errorf("%w: invalid project ID", models.ErrInvalidArgument)
	ErrInvalidPage        = fmt.Errorf("%w: page and size cannot be negative", models.ErrInvalidArgument)
	ErrAssigneeNotMember  = fmt.Errorf("%w: assignee is not a member of the project", models.ErrInvalidArgument)
	ErrSprintNotInProject = fmt.Errorf("%w: sprint does not belong to the project", models.ErrInvalidArgument)

	// errScopeChanged means the item left the scope that was locked for it.
	// Mutations retry with the new scope.
	errScopeChanged = errors.New("item changed scope while waiting for its lock")
)
