// Package sprint manages the sprints of a project. Sprints are containers
// for ordered backlog items; their ordering lives in the backlog service.
package sprint

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// Service defines all sprint-related business operations
type Service interface {
	// Read operations
	GetSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error)
	ListSprints(ctx context.Context, caller models.Caller, projectID string) ([]*models.Sprint, error)
	Summarize(ctx context.Context, caller models.Caller, sprintID string) (*models.SprintSummary, error)
	SummarizeActive(ctx context.Context, caller models.Caller, projectID string) (*models.ActiveWorkSummary, error)

	// Write operations
	CreateSprint(ctx context.Context, caller models.Caller, req CreateSprintRequest) (*models.Sprint, error)
	EditSprint(ctx context.Context, caller models.Caller, sprintID string, req EditSprintRequest) (*models.Sprint, error)
	StartSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error)
	CompleteSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error)
}

// Authorizer decides whether a caller may act inside a project.
type Authorizer interface {
	Authorize(ctx context.Context, caller models.Caller, projectID string, action auth.Action) error
}

// CreateSprintRequest encapsulates data for creating a sprint
type CreateSprintRequest struct {
	ProjectID string
	Name      string
	Goal      string
	StartDate *time.Time
	EndDate   *time.Time
}

// service implements Service
type service struct {
	repo   *database.Repository
	authz  Authorizer
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// NewService creates a new sprint service
func NewService(repo *database.Repository, authz Authorizer, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		authz:  authz,
		logger: logger,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetSprint retrieves a sprint the caller may read
func (s *service) GetSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error) {
	if strings.TrimSpace(sprintID) == "" {
		return nil, ErrInvalidSprintID
	}
	sprint, err := s.repo.Sprints.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, sprint.ProjectID, auth.ActionRead); err != nil {
		return nil, err
	}
	return sprint, nil
}

// ListSprints returns the sprints of a project
func (s *service) ListSprints(ctx context.Context, caller models.Caller, projectID string) ([]*models.Sprint, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProjectID
	}
	if _, err := s.repo.Projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, projectID, auth.ActionRead); err != nil {
		return nil, err
	}
	return s.repo.Sprints.ListByProject(ctx, projectID)
}

// CreateSprint creates a NOT_STARTED sprint
func (s *service) CreateSprint(ctx context.Context, caller models.Caller, req CreateSprintRequest) (*models.Sprint, error) {
	if err := validateCreateSprint(&req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Projects.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, req.ProjectID, auth.ActionManageSprints); err != nil {
		return nil, err
	}

	sprint := &models.Sprint{
		ID:        s.newID(),
		ProjectID: req.ProjectID,
		Name:      req.Name,
		Goal:      strings.TrimSpace(req.Goal),
		Status:    models.SprintNotStarted,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.repo.Sprints.Create(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}

	s.logger.Info("sprint created", "sprint_id", sprint.ID, "project_id", sprint.ProjectID, "user", caller.UserID)
	return sprint, nil
}

func validateCreateSprint(req *CreateSprintRequest) error {
	if strings.TrimSpace(req.ProjectID) == "" {
		return ErrInvalidProjectID
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ErrEmptyName
	}
	if len([]rune(req.Name)) > models.MaxNameLength {
		return ErrNameTooLong
	}
	if req.StartDate != nil && req.EndDate != nil && !req.EndDate.After(*req.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}
