package models

import (
	"fmt"
	"strings"
)

// ============================================================================
// BACKLOG STATUS
// ============================================================================

// Status is the workflow state of a backlog item
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ParseStatus normalizes user input ("in progress", "in-progress", "DONE") into a Status
func ParseStatus(s string) (Status, error) {
	switch normalizeEnum(s) {
	case string(StatusTodo):
		return StatusTodo, nil
	case string(StatusInProgress):
		return StatusInProgress, nil
	case string(StatusDone):
		return StatusDone, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

// ============================================================================
// BACKLOG PRIORITY
// ============================================================================

// Priority ranks how urgent a backlog item is
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority normalizes user input into a Priority
func ParsePriority(s string) (Priority, error) {
	switch normalizeEnum(s) {
	case string(PriorityLow):
		return PriorityLow, nil
	case string(PriorityMedium):
		return PriorityMedium, nil
	case string(PriorityHigh):
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrInvalidArgument, s)
}

// ============================================================================
// PROJECT ROLES
// ============================================================================

// Role is a membership role inside a project
type Role string

const (
	RoleProductOwner Role = "PRODUCT_OWNER"
	RoleScrumMaster  Role = "SCRUM_MASTER"
	RoleDeveloper    Role = "DEVELOPER"
)

// ParseRole normalizes user input into a Role
func ParseRole(s string) (Role, error) {
	switch normalizeEnum(s) {
	case string(RoleProductOwner):
		return RoleProductOwner, nil
	case string(RoleScrumMaster):
		return RoleScrumMaster, nil
	case string(RoleDeveloper):
		return RoleDeveloper, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
}

// ============================================================================
// LIMITS
// ============================================================================

// MaxTitleLength bounds backlog item titles
const MaxTitleLength = 255

// MaxNameLength bounds project and sprint names
const MaxNameLength = 100

func normalizeEnum(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}
