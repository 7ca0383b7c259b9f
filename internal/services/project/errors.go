package project

import (
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Domain errors for project service
var (
	// Validation errors
	ErrEmptyName        = fmt.Errorf("%w: project name cannot be empty", models.ErrInvalidArgument)
	ErrNameTooLong      = fmt.Errorf("%w: project name cannot exceed %d characters", models.ErrInvalidArgument, models.MaxNameLength)
	ErrInvalidProjectID = fmt.Errorf("%w: invalid project ID", models.ErrInvalidArgument)
	ErrInvalidUserID    = fmt.Errorf("%w: invalid user ID", models.ErrInvalidArgument)
)
