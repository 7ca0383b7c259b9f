package sprint

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/models"
	"github.com/thenoetrevino/projecthub/internal/testutil"
)

var (
	owner     = models.Caller{UserID: "u-owner"}
	master    = models.Caller{UserID: "u-sm"}
	developer = models.Caller{UserID: "u-dev"}
)

func setup(t *testing.T) Service {
	t.Helper()
	repo := testutil.SetupTestDB(t)
	testutil.CreateTestProject(t, repo, "p1", owner.UserID)
	testutil.AddTestMember(t, repo, "p1", master.UserID, models.RoleScrumMaster)
	testutil.AddTestMember(t, repo, "p1", developer.UserID, models.RoleDeveloper)
	return NewService(repo, auth.NewAuthorizer(repo.Projects), nil)
}

func TestCreateSprint(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)

	sprint, err := svc.CreateSprint(ctx, master, CreateSprintRequest{
		ProjectID: "p1", Name: " Sprint 1 ", Goal: "ship it", StartDate: &start, EndDate: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", sprint.Name)
	assert.Equal(t, models.SprintNotStarted, sprint.Status)

	got, err := svc.GetSprint(ctx, developer, sprint.ID)
	require.NoError(t, err)
	assert.Equal(t, "ship it", got.Goal)
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))

	list, err := svc.ListSprints(ctx, developer, "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sprint.ID, list[0].ID)
}

func TestCreateSprint_Rejections(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name   string
		caller models.Caller
		req    CreateSprintRequest
		want   error
	}{
		{"empty name", owner, CreateSprintRequest{ProjectID: "p1", Name: " "}, ErrEmptyName},
		{"long name", owner, CreateSprintRequest{ProjectID: "p1", Name: strings.Repeat("n", models.MaxNameLength+1)}, ErrNameTooLong},
		{"end before start", owner, CreateSprintRequest{ProjectID: "p1", Name: "s", StartDate: &start, EndDate: &before}, ErrEndBeforeStart},
		{"missing project", owner, CreateSprintRequest{ProjectID: "nope", Name: "s"}, models.ErrNotFound},
		{"developer cannot plan", developer, CreateSprintRequest{ProjectID: "p1", Name: "s"}, models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSprint(ctx, tt.caller, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetSprint_NotFound(t *testing.T) {
	svc := setup(t)
	_, err := svc.GetSprint(context.Background(), owner, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
