package models

// BacklogLocationName is how the unsectioned backlog is named in activity descriptions.
const BacklogLocationName = "Backlog"

// Scope identifies one ordered chain: a project's backlog or one of its sprints.
type Scope struct {
	ProjectID string
	SprintID  *string
}

// BacklogScope is the unsectioned backlog of a project.
func BacklogScope(projectID string) Scope {
	return Scope{ProjectID: projectID}
}

// SprintScope is the chain of a single sprint.
func SprintScope(projectID, sprintID string) Scope {
	return Scope{ProjectID: projectID, SprintID: &sprintID}
}

// IsBacklog reports whether the scope is the unsectioned project backlog.
func (s Scope) IsBacklog() bool {
	return s.SprintID == nil
}

// Equal compares project and container.
func (s Scope) Equal(o Scope) bool {
	return s.ProjectID == o.ProjectID && SameID(s.SprintID, o.SprintID)
}

// Key is a stable string form used for locks and cache keys.
func (s Scope) Key() string {
	if s.SprintID == nil {
		return "project/" + s.ProjectID + "/backlog"
	}
	return "project/" + s.ProjectID + "/sprint/" + *s.SprintID
}

func (s Scope) String() string {
	return s.Key()
}
