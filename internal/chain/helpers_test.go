package chain

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const testProject = "proj-1"

// memStore is an ItemStore over a map. Every read returns a copy so the
// engine cannot mutate stored rows without calling Save.
type memStore struct {
	items   map[string]*models.BacklogItem
	writes  []string
	deletes []string
	failOn  map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		items:  make(map[string]*models.BacklogItem),
		failOn: make(map[string]error),
	}
}

func (m *memStore) Get(_ context.Context, id string) (*models.BacklogItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("backlog item %s: %w", id, models.ErrNotFound)
	}
	return item.Clone(), nil
}

func (m *memStore) Save(_ context.Context, item *models.BacklogItem) error {
	if err := m.failOn[item.ID]; err != nil {
		return err
	}
	m.items[item.ID] = item.Clone()
	m.writes = append(m.writes, item.ID)
	return nil
}

func (m *memStore) FindAllInScope(_ context.Context, scope models.Scope) ([]*models.BacklogItem, error) {
	var out []*models.BacklogItem
	for _, item := range m.items {
		if item.Scope().Equal(scope) {
			out = append(out, item.Clone())
		}
	}
	// map order is random already; sort for reproducible failures
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) FindSuccessorOf(_ context.Context, item *models.BacklogItem) (*models.BacklogItem, error) {
	for _, other := range m.items {
		if other.PrevItemID != nil && *other.PrevItemID == item.ID {
			return other.Clone(), nil
		}
	}
	return nil, nil
}

func (m *memStore) Delete(_ context.Context, item *models.BacklogItem) error {
	delete(m.items, item.ID)
	m.deletes = append(m.deletes, item.ID)
	return nil
}

type sprintMap map[string]*models.Sprint

func (s sprintMap) GetSprint(_ context.Context, id string) (*models.Sprint, error) {
	sprint, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("sprint %s: %w", id, models.ErrNotFound)
	}
	return sprint, nil
}

type purgeRecorder struct {
	purged []string
	err    error
}

func (p *purgeRecorder) DeleteDependents(_ context.Context, itemID string) error {
	if p.err != nil {
		return p.err
	}
	p.purged = append(p.purged, itemID)
	return nil
}

// seed stores items linked in the given order inside scope.
func (m *memStore) seed(scope models.Scope, ids ...string) {
	var prev *string
	for _, id := range ids {
		m.items[id] = &models.BacklogItem{
			ID:         id,
			ProjectID:  scope.ProjectID,
			SprintID:   models.CopyID(scope.SprintID),
			PrevItemID: models.CopyID(prev),
			Title:      "item " + id,
			Status:     models.StatusTodo,
			Priority:   models.PriorityLow,
		}
		prev = models.CopyID(&id)
	}
}

// resetWrites forgets writes made while seeding or by earlier steps.
func (m *memStore) resetWrites() {
	m.writes = nil
	m.deletes = nil
}

// orderOf reconstructs scope and fails the test unless it is well formed.
func orderOf(t *testing.T, m *memStore, scope models.Scope) []string {
	t.Helper()
	items, err := m.FindAllInScope(context.Background(), scope)
	require.NoError(t, err)
	c, err := Reconstruct(items)
	require.NoError(t, err)
	require.NoError(t, c.Verify())
	require.Len(t, c.Items, len(items))
	return c.IDs()
}

func backlog() models.Scope {
	return models.BacklogScope(testProject)
}

func sprint(id string) models.Scope {
	return models.SprintScope(testProject, id)
}

func strPtr(s string) *string {
	return &s
}

func testSprints() sprintMap {
	return sprintMap{
		"s1":      {ID: "s1", ProjectID: testProject, Name: "Sprint 1", Status: models.SprintNotStarted},
		"s2":      {ID: "s2", ProjectID: testProject, Name: "Sprint 2", Status: models.SprintNotStarted},
		"foreign": {ID: "foreign", ProjectID: "proj-2", Name: "Elsewhere", Status: models.SprintNotStarted},
	}
}

func newTestEngine(m *memStore) *Engine {
	return NewEngine(m, WithSprintLookup(testSprints()))
}
