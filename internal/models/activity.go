package models

import "time"

// ActivityType classifies an entry of a backlog item's history
type ActivityType string

const (
	ActivityTitleChange    ActivityType = "TITLE_CHANGE"
	ActivityStatusChange   ActivityType = "STATUS_CHANGE"
	ActivityPriorityChange ActivityType = "PRIORITY_CHANGE"
	ActivityPointChange    ActivityType = "POINT_CHANGE"
	ActivityAssigneeChange ActivityType = "ASSIGNEE_CHANGE"
	ActivityCreated        ActivityType = "BACKLOG_CREATED"
	ActivityReordered      ActivityType = "BACKLOG_REORDERED"
)

// ActivityLog is one recorded change of a backlog item
type ActivityLog struct {
	ID          string       `json:"id"`
	ItemID      string       `json:"itemId"`
	UserID      string       `json:"userId"`
	Type        ActivityType `json:"activityType"`
	Description string       `json:"description"`
	OldValue    *string      `json:"oldValue,omitempty"`
	NewValue    *string      `json:"newValue,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}
