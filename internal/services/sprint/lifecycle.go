package sprint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// EditSprintRequest carries the optional goal and date changes of a sprint.
// Nil fields are left alone.
type EditSprintRequest struct {
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// EditSprint changes the goal and planned dates of a sprint
func (s *service) EditSprint(ctx context.Context, caller models.Caller, sprintID string, req EditSprintRequest) (*models.Sprint, error) {
	if req.Goal == nil && req.StartDate == nil && req.EndDate == nil {
		return nil, ErrNothingToEdit
	}
	sprint, err := s.manageable(ctx, caller, sprintID)
	if err != nil {
		return nil, err
	}

	if req.Goal != nil {
		sprint.Goal = strings.TrimSpace(*req.Goal)
	}
	if req.StartDate != nil {
		sprint.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		sprint.EndDate = req.EndDate
	}
	if sprint.StartDate != nil && sprint.EndDate != nil && !sprint.EndDate.After(*sprint.StartDate) {
		return nil, ErrEndBeforeStart
	}

	if err := s.repo.Sprints.Update(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to edit sprint: %w", err)
	}
	s.logger.Info("sprint edited", "sprint_id", sprint.ID, "user", caller.UserID)
	return sprint, nil
}

// StartSprint moves a sprint to IN_PROGRESS and stamps its start date
func (s *service) StartSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error) {
	sprint, err := s.manageable(ctx, caller, sprintID)
	if err != nil {
		return nil, err
	}
	switch sprint.Status {
	case models.SprintInProgress:
		return nil, ErrAlreadyStarted
	case models.SprintCompleted:
		return nil, ErrAlreadyCompleted
	}

	started := s.now()
	sprint.Status = models.SprintInProgress
	sprint.StartDate = &started
	if sprint.EndDate != nil && !sprint.EndDate.After(started) {
		// an end date already in the past no longer applies
		sprint.EndDate = nil
	}
	if err := s.repo.Sprints.Update(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to start sprint: %w", err)
	}
	s.logger.Info("sprint started", "sprint_id", sprint.ID, "project_id", sprint.ProjectID, "user", caller.UserID)
	return sprint, nil
}

// CompleteSprint closes a sprint and stamps its end date
func (s *service) CompleteSprint(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error) {
	sprint, err := s.manageable(ctx, caller, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status == models.SprintCompleted {
		return nil, ErrAlreadyCompleted
	}

	ended := s.now()
	sprint.Status = models.SprintCompleted
	sprint.EndDate = &ended
	if sprint.StartDate != nil && sprint.StartDate.After(ended) {
		sprint.StartDate = &ended
	}
	if err := s.repo.Sprints.Update(ctx, sprint); err != nil {
		return nil, fmt.Errorf("failed to complete sprint: %w", err)
	}
	s.logger.Info("sprint completed", "sprint_id", sprint.ID, "project_id", sprint.ProjectID, "user", caller.UserID)
	return sprint, nil
}

// Summarize counts the done and open items of a sprint
func (s *service) Summarize(ctx context.Context, caller models.Caller, sprintID string) (*models.SprintSummary, error) {
	sprint, err := s.GetSprint(ctx, caller, sprintID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.Items.FindAllInScope(ctx, models.SprintScope(sprint.ProjectID, sprint.ID))
	if err != nil {
		return nil, err
	}

	summary := &models.SprintSummary{SprintID: sprint.ID, Total: len(items)}
	for _, item := range items {
		if item.Status == models.StatusDone {
			summary.Done++
		}
	}
	summary.NotDone = summary.Total - summary.Done
	return summary, nil
}

// SummarizeActive counts the items of every in-progress sprint of a project
// by status. Without an active sprint every count is zero.
func (s *service) SummarizeActive(ctx context.Context, caller models.Caller, projectID string) (*models.ActiveWorkSummary, error) {
	sprints, err := s.ListSprints(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}

	summary := &models.ActiveWorkSummary{ProjectID: projectID}
	for _, sprint := range sprints {
		if sprint.Status != models.SprintInProgress {
			continue
		}
		summary.ActiveSprints++
		items, err := s.repo.Items.FindAllInScope(ctx, models.SprintScope(projectID, sprint.ID))
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			switch item.Status {
			case models.StatusTodo:
				summary.Todo++
			case models.StatusInProgress:
				summary.InProgress++
			case models.StatusDone:
				summary.Done++
			}
		}
	}
	return summary, nil
}

// manageable loads a sprint the caller may plan
func (s *service) manageable(ctx context.Context, caller models.Caller, sprintID string) (*models.Sprint, error) {
	if strings.TrimSpace(sprintID) == "" {
		return nil, ErrInvalidSprintID
	}
	sprint, err := s.repo.Sprints.GetSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, sprint.ProjectID, auth.ActionManageSprints); err != nil {
		return nil, err
	}
	return sprint, nil
}
