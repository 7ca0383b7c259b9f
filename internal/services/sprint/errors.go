package sprint

import (
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Domain errors for sprint service
var (
	ErrEmptyName        = fmt.Errorf("%w: sprint name cannot be empty", models.ErrInvalidArgument)
	ErrNameTooLong      = fmt.Errorf("%w: sprint name cannot exceed %d characters", models.ErrInvalidArgument, models.MaxNameLength)
	ErrInvalidProjectID = fmt.Errorf("%w: invalid project ID", models.ErrInvalidArgument)
	ErrInvalidSprintID  = fmt.Errorf("%w: invalid sprint ID", models.ErrInvalidArgument)
	ErrEndBeforeStart   = fmt.Errorf("%w: sprint end date must be after its start date", models.ErrInvalidArgument)
	ErrAlreadyStarted   = fmt.Errorf("%w: sprint is already in progress", models.ErrInvalidArgument)
	ErrAlreadyCompleted = fmt.Errorf("%w: sprint is already completed", models.ErrInvalidArgument)
	ErrNothingToEdit    = fmt.Errorf("%w: nothing to change", models.ErrInvalidArgument)
)
