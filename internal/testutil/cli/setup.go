package cli

import (
	"io"
	"log/slog"
	"testing"

	"github.com/thenoetrevino/projecthub/internal/app"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/models"
	"github.com/thenoetrevino/projecthub/internal/testutil"
)

// Test identities. Commands act as a user through --as.
const (
	OwnerID     = "u-owner"
	DeveloperID = "u-dev"
)

// SetupCLITest creates an in-memory DB and returns both the repository and
// App instance. This function is only for CLI tests and is isolated in a
// separate package to avoid import cycles when service tests import testutil.
func SetupCLITest(t *testing.T) (*database.Repository, *app.App) {
	t.Helper()
	repo := testutil.SetupTestDB(t)

	// Note: EventPublisher is nil - event publishing is tested elsewhere
	appInstance := app.New(repo, app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	return repo, appInstance
}

// CreateTestProject creates a project owned by OwnerID with DeveloperID as a
// developer.
func CreateTestProject(t *testing.T, repo *database.Repository, id string) *models.Project {
	t.Helper()
	p := testutil.CreateTestProject(t, repo, id, OwnerID)
	testutil.AddTestMember(t, repo, id, DeveloperID, models.RoleDeveloper)
	return p
}
