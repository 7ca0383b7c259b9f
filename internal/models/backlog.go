package models

import "time"

// BacklogItem is a unit of work that lives either in a project's unsectioned
// backlog or in one of its sprints. Items sharing a scope are chained through
// PrevItemID, which points at the item directly in front of them.
type BacklogItem struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	SprintID   *string   `json:"sprintId,omitempty"`   // nil = unsectioned project backlog
	PrevItemID *string   `json:"prevItemId,omitempty"` // nil = head of the chain
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	Priority   Priority  `json:"priority"`
	Point      int       `json:"point"`
	AssigneeID string    `json:"assigneeId,omitempty"`
	CreatorID  string    `json:"creatorId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Scope returns the chain the item currently belongs to.
func (i *BacklogItem) Scope() Scope {
	return Scope{ProjectID: i.ProjectID, SprintID: i.SprintID}
}

// IsHead reports whether the item has no predecessor.
func (i *BacklogItem) IsHead() bool {
	return i.PrevItemID == nil
}

// GetID satisfies the CLI quiet-mode output contract.
func (i *BacklogItem) GetID() string {
	return i.ID
}

// Clone returns a copy that shares no pointers with the receiver.
func (i *BacklogItem) Clone() *BacklogItem {
	c := *i
	c.SprintID = CopyID(i.SprintID)
	c.PrevItemID = CopyID(i.PrevItemID)
	return &c
}

// CopyID duplicates an optional identifier.
func CopyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// SameID reports whether two optional identifiers are equal (both nil counts as equal).
func SameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
