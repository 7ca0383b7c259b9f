package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// MemberLookup resolves a user's membership in a project.
type MemberLookup interface {
	GetMember(ctx context.Context, projectID, userID string) (*models.Member, error)
}

// Authorizer checks project-scoped permissions.
type Authorizer struct {
	members MemberLookup
}

// NewAuthorizer creates an Authorizer over a membership store.
func NewAuthorizer(members MemberLookup) *Authorizer {
	return &Authorizer{members: members}
}

// Authorize returns nil when caller may perform action in projectID. A
// caller without identity gets ErrUnauthorized, a non-member or a member
// whose role lacks the action gets ErrForbidden.
func (a *Authorizer) Authorize(ctx context.Context, caller models.Caller, projectID string, action Action) error {
	if caller.UserID == "" {
		return fmt.Errorf("%w: no caller identity", models.ErrUnauthorized)
	}

	member, err := a.members.GetMember(ctx, projectID, caller.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s is not a member of project %s", models.ErrForbidden, caller.DisplayName(), projectID)
	}
	if err != nil {
		return fmt.Errorf("checking membership: %w", err)
	}

	if !Can(member.Role, action) {
		return fmt.Errorf("%w: role %s may not %s", models.ErrForbidden, member.Role, action)
	}
	return nil
}
