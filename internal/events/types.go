package events

import "time"

// EventType indicates what kind of change occurred
type EventType string

const (
	EventBacklogChanged EventType = "backlog_changed"
	EventPing           EventType = "ping"
	EventPong           EventType = "pong"
)

// Event notifies listeners that the order or content of a scope changed.
// Listeners re-read the scope; the event carries no item data.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID string    `json:"projectId,omitempty"` // empty = several projects changed
	SprintID  *string   `json:"sprintId,omitempty"`  // nil with a project = its backlog, or several scopes
	Timestamp time.Time `json:"timestamp"`
	// SequenceID increases monotonically per publisher
	SequenceID int64 `json:"sequenceId,omitempty"`
}

// SubscribeMessage is sent by clients to subscribe to specific project updates
type SubscribeMessage struct {
	ProjectID string `json:"projectId"` // empty = all projects
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Type      string            `json:"type"` // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}

// Matches reports whether a subscriber filtering on projectID wants e.
func (e Event) Matches(projectID string) bool {
	return projectID == "" || e.ProjectID == "" || e.ProjectID == projectID
}
