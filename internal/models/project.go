package models

import "time"

// Project is the top-level owner of backlog items and sprints
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID satisfies the CLI quiet-mode output contract.
func (p *Project) GetID() string {
	return p.ID
}

// Member is a user's role within a project
type Member struct {
	ProjectID string    `json:"projectId"`
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Caller is the authenticated identity on whose behalf an operation runs.
// It is always passed explicitly; nothing reads it from ambient state.
type Caller struct {
	UserID   string
	Username string
}

// DisplayName prefers the username and falls back to the user ID.
func (c Caller) DisplayName() string {
	if c.Username != "" {
		return c.Username
	}
	return c.UserID
}
