package auth

import "github.com/thenoetrevino/projecthub/internal/models"

// Action is something a project member may attempt.
type Action string

const (
	ActionRead          Action = "read"
	ActionEditBacklog   Action = "edit_backlog"
	ActionManageSprints Action = "manage_sprints"
	ActionManageMembers Action = "manage_members"
)

// Can reports whether role permits action. Any member may read and edit the
// backlog; sprints belong to product owners and scrum masters; membership
// belongs to product owners.
func Can(role models.Role, action Action) bool {
	switch role {
	case models.RoleProductOwner:
		return true
	case models.RoleScrumMaster:
		return action == ActionRead || action == ActionEditBacklog || action == ActionManageSprints
	case models.RoleDeveloper:
		return action == ActionRead || action == ActionEditBacklog
	default:
		return false
	}
}
