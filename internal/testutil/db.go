package testutil

import (
	"context"
	"testing"

	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const TestAppKey ContextKey = "testApp"

// SetupTestDB creates an in-memory database with the full production schema.
// The database is closed by t.Cleanup.
func SetupTestDB(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return database.NewRepository(db, database.SQLite)
}

// CreateTestProject creates a project and makes ownerID its product owner.
func CreateTestProject(t *testing.T, repo *database.Repository, id, ownerID string) *models.Project {
	t.Helper()
	ctx := context.Background()

	p := &models.Project{ID: id, Name: "Project " + id}
	if err := repo.Projects.Create(ctx, p); err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	if ownerID != "" {
		AddTestMember(t, repo, id, ownerID, models.RoleProductOwner)
	}
	return p
}

// AddTestMember grants userID a role in a project.
func AddTestMember(t *testing.T, repo *database.Repository, projectID, userID string, role models.Role) {
	t.Helper()
	m := &models.Member{ProjectID: projectID, UserID: userID, Role: role}
	if err := repo.Projects.PutMember(context.Background(), m); err != nil {
		t.Fatalf("Failed to add member %s: %v", userID, err)
	}
}

// CreateTestSprint creates a NOT_STARTED sprint named "Sprint <id>".
func CreateTestSprint(t *testing.T, repo *database.Repository, projectID, id string) *models.Sprint {
	t.Helper()
	s := &models.Sprint{ID: id, ProjectID: projectID, Name: "Sprint " + id, Status: models.SprintNotStarted}
	if err := repo.Sprints.Create(context.Background(), s); err != nil {
		t.Fatalf("Failed to create test sprint: %v", err)
	}
	return s
}

// CreateTestChain saves items linked in the given order into scope. Titles
// are "Item <id>".
func CreateTestChain(t *testing.T, repo *database.Repository, scope models.Scope, ids ...string) []*models.BacklogItem {
	t.Helper()
	items := make([]*models.BacklogItem, 0, len(ids))
	var prev *string
	for _, id := range ids {
		item := &models.BacklogItem{
			ID:         id,
			ProjectID:  scope.ProjectID,
			SprintID:   models.CopyID(scope.SprintID),
			PrevItemID: models.CopyID(prev),
			Title:      "Item " + id,
			Status:     models.StatusTodo,
			Priority:   models.PriorityLow,
		}
		if err := repo.Items.Save(context.Background(), item); err != nil {
			t.Fatalf("Failed to save item %s: %v", id, err)
		}
		items = append(items, item)
		prev = models.CopyID(&item.ID)
	}
	return items
}

// ScopeOrder returns the ids of a scope in chain order. It fails the test on
// a corrupted or partially reachable chain.
func ScopeOrder(t *testing.T, repo *database.Repository, scope models.Scope) []string {
	t.Helper()
	items, err := repo.Items.FindAllInScope(context.Background(), scope)
	if err != nil {
		t.Fatalf("Failed to load scope %s: %v", scope, err)
	}

	next := make(map[string]*models.BacklogItem, len(items))
	var head *models.BacklogItem
	for _, it := range items {
		if it.PrevItemID == nil {
			if head != nil {
				t.Fatalf("Scope %s has two heads: %s and %s", scope, head.ID, it.ID)
			}
			head = it
			continue
		}
		if _, dup := next[*it.PrevItemID]; dup {
			t.Fatalf("Scope %s has two successors of %s", scope, *it.PrevItemID)
		}
		next[*it.PrevItemID] = it
	}

	ids := make([]string, 0, len(items))
	for cur := head; cur != nil; cur = next[cur.ID] {
		ids = append(ids, cur.ID)
	}
	if len(ids) != len(items) {
		t.Fatalf("Scope %s: %d of %d items reachable from head", scope, len(ids), len(items))
	}
	return ids
}
