package models

import "time"

// SprintStatus tracks the lifecycle of a sprint
type SprintStatus string

const (
	SprintNotStarted SprintStatus = "NOT_STARTED"
	SprintInProgress SprintStatus = "IN_PROGRESS"
	SprintCompleted  SprintStatus = "COMPLETED"
)

// Sprint is a time-boxed container of backlog items within a project
type Sprint struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"projectId"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal,omitempty"`
	Status    SprintStatus `json:"status"`
	StartDate *time.Time   `json:"startDate,omitempty"`
	EndDate   *time.Time   `json:"endDate,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// GetID satisfies the CLI quiet-mode output contract.
func (s *Sprint) GetID() string {
	return s.ID
}

// SprintSummary counts the items of one sprint by completion.
type SprintSummary struct {
	SprintID string `json:"sprintId"`
	Total    int    `json:"totalBacklogs"`
	Done     int    `json:"doneBacklogs"`
	NotDone  int    `json:"notDoneBacklogs"`
}

// ActiveWorkSummary counts the items of a project's in-progress sprints by status.
type ActiveWorkSummary struct {
	ProjectID     string `json:"projectId"`
	ActiveSprints int    `json:"activeSprints"`
	Todo          int    `json:"totalTodo"`
	InProgress    int    `json:"totalInProgress"`
	Done          int    `json:"totalDone"`
}
