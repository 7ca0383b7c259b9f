package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database with the production schema.
// Kept local to avoid an import cycle with internal/testutil.
func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), Options{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, SQLite)
}

// setupTestDBFile creates a file-backed database for persistence checks.
func setupTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projecthub-test.db")
	db, err := Open(context.Background(), Options{Driver: "sqlite", DSN: path})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	return db, path
}

// ============================================================================
// FIXTURES
// ============================================================================

func createTestProject(t *testing.T, repo *Repository, id string) *models.Project {
	t.Helper()
	p := &models.Project{ID: id, Name: "Project " + id}
	if err := repo.Projects.Create(context.Background(), p); err != nil {
		t.Fatalf("Failed to create test project: %v", err)
	}
	return p
}

func createTestSprint(t *testing.T, repo *Repository, projectID, id string) *models.Sprint {
	t.Helper()
	s := &models.Sprint{ID: id, ProjectID: projectID, Name: "Sprint " + id, Status: models.SprintNotStarted}
	if err := repo.Sprints.Create(context.Background(), s); err != nil {
		t.Fatalf("Failed to create test sprint: %v", err)
	}
	return s
}

// createTestChain saves items linked in order within scope.
func createTestChain(t *testing.T, repo *Repository, scope models.Scope, ids ...string) {
	t.Helper()
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
			CreatorID:  "u1",
			AssigneeID: "u1",
		}
		if err := repo.Items.Save(context.Background(), item); err != nil {
			t.Fatalf("Failed to save item %s: %v", id, err)
		}
		prev = models.CopyID(&id)
	}
}
