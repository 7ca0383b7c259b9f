package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// Service defines all project-related business operations
type Service interface {
	// Read operations
	ListProjects(ctx context.Context, caller models.Caller) ([]*models.Project, error)
	GetProject(ctx context.Context, caller models.Caller, projectID string) (*models.Project, error)
	ListMembers(ctx context.Context, caller models.Caller, projectID string) ([]*models.Member, error)

	// Write operations
	CreateProject(ctx context.Context, caller models.Caller, req CreateProjectRequest) (*models.Project, error)
	AddMember(ctx context.Context, caller models.Caller, req AddMemberRequest) (*models.Member, error)
}

// Authorizer decides whether a caller may act inside a project.
type Authorizer interface {
	Authorize(ctx context.Context, caller models.Caller, projectID string, action auth.Action) error
}

// CreateProjectRequest encapsulates data for creating a project
type CreateProjectRequest struct {
	Name string
}

// AddMemberRequest grants a user a role; an existing member has their role
// replaced.
type AddMemberRequest struct {
	ProjectID string
	UserID    string
	Role      models.Role
}

// service implements Service
type service struct {
	repo   *database.Repository
	authz  Authorizer
	logger *slog.Logger
	newID  func() string
}

// NewService creates a new project service
func NewService(repo *database.Repository, authz Authorizer, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, authz: authz, logger: logger, newID: uuid.NewString}
}

// ListProjects returns the projects the caller belongs to
func (s *service) ListProjects(ctx context.Context, caller models.Caller) ([]*models.Project, error) {
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: no caller identity", models.ErrUnauthorized)
	}
	return s.repo.Projects.ListByMember(ctx, caller.UserID)
}

// GetProject retrieves a specific project
func (s *service) GetProject(ctx context.Context, caller models.Caller, projectID string) (*models.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProjectID
	}
	project, err := s.repo.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, projectID, auth.ActionRead); err != nil {
		return nil, err
	}
	return project, nil
}

// ListMembers returns the members of a project
func (s *service) ListMembers(ctx context.Context, caller models.Caller, projectID string) ([]*models.Member, error) {
	if _, err := s.GetProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	return s.repo.Projects.ListMembers(ctx, projectID)
}

// CreateProject creates a project with the caller as its product owner
func (s *service) CreateProject(ctx context.Context, caller models.Caller, req CreateProjectRequest) (*models.Project, error) {
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: no caller identity", models.ErrUnauthorized)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if len([]rune(name)) > models.MaxNameLength {
		return nil, ErrNameTooLong
	}

	project := &models.Project{ID: s.newID(), Name: name}
	err := s.repo.WithTx(ctx, func(tx *database.Repository) error {
		if err := tx.Projects.Create(ctx, project); err != nil {
			return err
		}
		return tx.Projects.PutMember(ctx, &models.Member{
			ProjectID: project.ID,
			UserID:    caller.UserID,
			Role:      models.RoleProductOwner,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "owner", caller.UserID)
	return project, nil
}

// AddMember grants a role inside a project
func (s *service) AddMember(ctx context.Context, caller models.Caller, req AddMemberRequest) (*models.Member, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidProjectID
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrInvalidUserID
	}
	role, err := models.ParseRole(string(req.Role))
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Projects.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, req.ProjectID, auth.ActionManageMembers); err != nil {
		return nil, err
	}

	member := &models.Member{ProjectID: req.ProjectID, UserID: strings.TrimSpace(req.UserID), Role: role}
	if err := s.repo.Projects.PutMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.logger.Info("member added", "project_id", req.ProjectID, "member", member.UserID, "role", role, "by", caller.UserID)
	return member, nil
}
