package backlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/cache"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/events"
	"github.com/thenoetrevino/projecthub/internal/models"
	"github.com/thenoetrevino/projecthub/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

var (
	owner     = models.Caller{UserID: "u-owner", Username: "olivia"}
	developer = models.Caller{UserID: "u-dev", Username: "dev"}
	outsider  = models.Caller{UserID: "u-out", Username: "outsider"}
)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   bool
}

func (p *recordingPublisher) Connect(context.Context) error { return nil }

func (p *recordingPublisher) SendEvent(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("transport down")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Listen(context.Context) (<-chan events.Event, error) {
	return nil, errors.New("not supported")
}

func (p *recordingPublisher) Subscribe(string) error { return nil }
func (p *recordingPublisher) Close() error           { return nil }

func (p *recordingPublisher) sent() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type fixture struct {
	repo *database.Repository
	svc  Service
	pub  *recordingPublisher
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	repo := testutil.SetupTestDB(t)
	testutil.CreateTestProject(t, repo, "p1", owner.UserID)
	testutil.AddTestMember(t, repo, "p1", developer.UserID, models.RoleDeveloper)
	testutil.CreateTestSprint(t, repo, "p1", "s1")

	testutil.CreateTestProject(t, repo, "p2", owner.UserID)
	testutil.CreateTestSprint(t, repo, "p2", "s-foreign")

	pub := &recordingPublisher{}
	opts = append([]Option{
		WithEventPublisher(pub),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	svc := NewService(repo, auth.NewAuthorizer(repo.Projects), opts...)
	return &fixture{repo: repo, svc: svc, pub: pub}
}

func ids(items []*models.BacklogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func (f *fixture) order(t *testing.T, scope models.Scope) []string {
	t.Helper()
	return testutil.ScopeOrder(t, f.repo, scope)
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateItem_AppendsWithDefaults(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.CreateItem(ctx, owner, CreateItemRequest{ProjectID: "p1", Title: "  first  "})
	require.NoError(t, err)
	second, err := f.svc.CreateItem(ctx, developer, CreateItemRequest{ProjectID: "p1", Title: "second"})
	require.NoError(t, err)

	assert.Equal(t, "first", first.Title)
	assert.Equal(t, models.StatusTodo, first.Status)
	assert.Equal(t, models.PriorityLow, first.Priority)
	assert.Equal(t, owner.UserID, first.CreatorID)
	assert.Equal(t, owner.UserID, first.AssigneeID)
	assert.Nil(t, first.PrevItemID)
	require.NotNil(t, second.PrevItemID)
	assert.Equal(t, first.ID, *second.PrevItemID)

	assert.Equal(t, []string{first.ID, second.ID}, f.order(t, models.BacklogScope("p1")))

	log, err := f.svc.ListActivity(ctx, owner, first.ID)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, models.ActivityCreated, log[0].Type)
	assert.Equal(t, "Backlog 'first' was created by olivia.", log[0].Description)
}

func TestCreateItem_IntoSprint(t *testing.T) {
	f := setup(t)

	item, err := f.svc.CreateItem(context.Background(), owner, CreateItemRequest{
		ProjectID: "p1", Title: "sprint work", SprintID: strPtr("s1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{item.ID}, f.order(t, models.SprintScope("p1", "s1")))
	assert.Empty(t, f.order(t, models.BacklogScope("p1")))
}

func TestCreateItem_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller models.Caller
		req    CreateItemRequest
		want   error
	}{
		{"empty title", owner, CreateItemRequest{ProjectID: "p1", Title: "   "}, models.ErrInvalidArgument},
		{"title too long", owner, CreateItemRequest{ProjectID: "p1", Title: strings.Repeat("x", models.MaxTitleLength+1)}, models.ErrInvalidArgument},
		{"missing project", owner, CreateItemRequest{ProjectID: "nope", Title: "t"}, models.ErrNotFound},
		{"no identity", models.Caller{}, CreateItemRequest{ProjectID: "p1", Title: "t"}, models.ErrUnauthorized},
		{"not a member", outsider, CreateItemRequest{ProjectID: "p1", Title: "t"}, models.ErrForbidden},
		{"unknown sprint", owner, CreateItemRequest{ProjectID: "p1", Title: "t", SprintID: strPtr("ghost")}, models.ErrNotFound},
		{"foreign sprint", owner, CreateItemRequest{ProjectID: "p1", Title: "t", SprintID: strPtr("s-foreign")}, models.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateItem(ctx, tt.caller, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	count, err := f.repo.Items.CountInProject(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.pub.sent())
}

// ============================================================================
// LIST
// ============================================================================

func TestListItems_OrderFilterAndPaging(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a", "b", "c", "d", "e")

	high := models.PriorityHigh
	_, err := f.svc.UpdateItem(ctx, owner, "b", UpdateItemRequest{Priority: &high})
	require.NoError(t, err)
	_, err = f.svc.UpdateItem(ctx, owner, "d", UpdateItemRequest{Priority: &high})
	require.NoError(t, err)

	all, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(all.Items))
	assert.Equal(t, 5, all.Total)
	assert.Equal(t, 1, all.TotalPages)

	page, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1", Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, ids(page.Items))
	assert.Equal(t, 3, page.TotalPages)

	past, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1", Page: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.Equal(t, 5, past.Total)

	for _, tc := range []struct{ page, size int }{{math.MaxInt / 2, 4}, {math.MaxInt, 2}, {math.MaxInt, math.MaxInt}} {
		huge, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1", Page: tc.page, Size: tc.size})
		require.NoError(t, err)
		assert.Empty(t, huge.Items)
		assert.Equal(t, tc.page, huge.Page)
	}

	last, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1", Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, ids(last.Items))

	filtered, err := f.svc.ListItems(ctx, developer, ListItemsRequest{ProjectID: "p1", Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d"}, ids(filtered.Items))
}

func TestListItems_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1", SprintID: strPtr("ghost")})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1", SprintID: strPtr("s-foreign")})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1", Page: -1})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = f.svc.ListItems(ctx, outsider, ListItemsRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestListItems_OrphansLenientByDefault(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a", "b")
	// points at an item that is not in the scope
	require.NoError(t, f.repo.Items.Save(ctx, &models.BacklogItem{
		ID: "lost", ProjectID: "p1", PrevItemID: strPtr("gone"), Title: "lost",
		Status: models.StatusTodo, Priority: models.PriorityLow,
	}))

	page, err := f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(page.Items))

	strict := setup(t, WithStrictReads(true))
	testutil.CreateTestChain(t, strict.repo, models.BacklogScope("p1"), "a")
	require.NoError(t, strict.repo.Items.Save(ctx, &models.BacklogItem{
		ID: "lost", ProjectID: "p1", PrevItemID: strPtr("gone"), Title: "lost",
		Status: models.StatusTodo, Priority: models.PriorityLow,
	}))
	_, err = strict.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1"})
	assert.ErrorIs(t, err, models.ErrChainCorrupted)

	// mutations never accept the partial chain
	_, err = f.svc.CreateItem(ctx, owner, CreateItemRequest{ProjectID: "p1", Title: "more"})
	assert.ErrorIs(t, err, models.ErrChainCorrupted)
}

// ============================================================================
// REORDER
// ============================================================================

func TestReorderItem_WithinScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	scope := models.BacklogScope("p1")
	testutil.CreateTestChain(t, f.repo, scope, "a", "b", "c")

	moved, err := f.svc.ReorderItem(ctx, developer, "c", ReorderRequest{InsertPosition: 0})
	require.NoError(t, err)
	assert.Nil(t, moved.PrevItemID)
	assert.Equal(t, []string{"c", "a", "b"}, f.order(t, scope))

	log, err := f.svc.ListActivity(ctx, owner, "c")
	require.NoError(t, err)
	require.NotEmpty(t, log)
	assert.Equal(t, models.ActivityReordered, log[0].Type)
	assert.Equal(t, "Backlog 'Item c' was moved by dev from Backlog to Backlog at position 1.", log[0].Description)

	sent := f.pub.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, events.EventBacklogChanged, sent[0].Type)
	assert.Equal(t, "p1", sent[0].ProjectID)
	assert.Nil(t, sent[0].SprintID)
}

func TestReorderItem_AcrossContainers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	backlog := models.BacklogScope("p1")
	sprint := models.SprintScope("p1", "s1")
	testutil.CreateTestChain(t, f.repo, backlog, "a", "b", "c")
	testutil.CreateTestChain(t, f.repo, sprint, "x", "y")

	moved, err := f.svc.ReorderItem(ctx, owner, "b", ReorderRequest{TargetSprintID: strPtr("s1"), InsertPosition: 1})
	require.NoError(t, err)
	require.NotNil(t, moved.SprintID)
	assert.Equal(t, "s1", *moved.SprintID)

	assert.Equal(t, []string{"a", "c"}, f.order(t, backlog))
	assert.Equal(t, []string{"x", "b", "y"}, f.order(t, sprint))

	log, err := f.svc.ListActivity(ctx, owner, "b")
	require.NoError(t, err)
	assert.Equal(t, "Backlog 'Item b' was moved by olivia from Backlog to Sprint s1 at position 2.", log[0].Description)
	require.NotNil(t, log[0].OldValue)
	require.NotNil(t, log[0].NewValue)
	assert.Equal(t, models.BacklogLocationName, *log[0].OldValue)
	assert.Equal(t, "Sprint s1", *log[0].NewValue)

	assert.Len(t, f.pub.sent(), 2)

	_, err = f.svc.ReorderItem(ctx, owner, "b", ReorderRequest{InsertPosition: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, f.order(t, backlog))
	assert.Equal(t, []string{"x", "y"}, f.order(t, sprint))
}

func TestReorderItem_ActivityFailureKeepsMove(t *testing.T) {
	// every activity entry collides with the row seeded below
	f := setup(t, WithIDGenerator(func() string { return "taken" }))
	ctx := context.Background()
	scope := models.BacklogScope("p1")
	testutil.CreateTestChain(t, f.repo, scope, "a", "b", "c")
	require.NoError(t, f.repo.Activity.Create(ctx, &models.ActivityLog{
		ID: "taken", ItemID: "a", UserID: owner.UserID, Type: models.ActivityCreated, Description: "seed",
	}))

	_, err := f.svc.ReorderItem(ctx, developer, "c", ReorderRequest{InsertPosition: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, f.order(t, scope))

	log, err := f.svc.ListActivity(ctx, owner, "c")
	require.NoError(t, err)
	assert.Empty(t, log)
	assert.Len(t, f.pub.sent(), 1)
}

func TestReorderItem_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	scope := models.BacklogScope("p1")
	testutil.CreateTestChain(t, f.repo, scope, "a", "b", "c")

	tests := []struct {
		name   string
		caller models.Caller
		itemID string
		req    ReorderRequest
		want   error
	}{
		{"missing item", owner, "ghost", ReorderRequest{}, models.ErrNotFound},
		{"missing sprint", owner, "a", ReorderRequest{TargetSprintID: strPtr("ghost")}, models.ErrNotFound},
		{"foreign sprint", owner, "a", ReorderRequest{TargetSprintID: strPtr("s-foreign")}, models.ErrInvalidArgument},
		{"position past end", owner, "a", ReorderRequest{InsertPosition: 3}, models.ErrInvalidArgument},
		{"negative position", owner, "a", ReorderRequest{InsertPosition: -1}, models.ErrInvalidArgument},
		{"not a member", outsider, "a", ReorderRequest{}, models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ReorderItem(ctx, tt.caller, tt.itemID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.ReorderItem(ctx, owner, "a", ReorderRequest{InsertPosition: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 2")

	assert.Equal(t, []string{"a", "b", "c"}, f.order(t, scope))
	assert.Empty(t, f.pub.sent())
}

func TestReorderItem_PublishFailureDoesNotFail(t *testing.T) {
	f := setup(t)
	f.pub.fail = true
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a", "b")

	_, err := f.svc.ReorderItem(context.Background(), owner, "b", ReorderRequest{InsertPosition: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, f.order(t, models.BacklogScope("p1")))
}

// Concurrent moves between the backlog and a sprint must leave both chains
// intact and together holding every item exactly once.
func TestReorderItem_ConcurrentMovesKeepChainsValid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	backlog := models.BacklogScope("p1")
	sprint := models.SprintScope("p1", "s1")

	var all []string
	for i := 0; i < 8; i++ {
		all = append(all, fmt.Sprintf("b%d", i))
	}
	testutil.CreateTestChain(t, f.repo, backlog, all...)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 15; i++ {
				id := all[rng.Intn(len(all))]
				var target *string
				if rng.Intn(2) == 0 {
					target = strPtr("s1")
				}
				// position 0 is valid for every scope size
				_, err := f.svc.ReorderItem(ctx, owner, id, ReorderRequest{TargetSprintID: target, InsertPosition: 0})
				assert.NoError(t, err)
			}
		}(int64(w))
	}
	wg.Wait()

	got := append(f.order(t, backlog), f.order(t, sprint)...)
	assert.ElementsMatch(t, all, got)
}

// ============================================================================
// UPDATE
// ============================================================================

func TestUpdateItem_RecordsEachChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a", "b")

	title := "renamed"
	status := models.Status("in progress")
	point := 5
	item, err := f.svc.UpdateItem(ctx, owner, "b", UpdateItemRequest{
		Title:      &title,
		Status:     &status,
		Point:      &point,
		AssigneeID: strPtr(developer.UserID),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", item.Title)
	assert.Equal(t, models.StatusInProgress, item.Status)
	assert.Equal(t, 5, item.Point)
	assert.Equal(t, developer.UserID, item.AssigneeID)

	// the chain link survives a field edit
	require.NotNil(t, item.PrevItemID)
	assert.Equal(t, "a", *item.PrevItemID)
	assert.Equal(t, []string{"a", "b"}, f.order(t, models.BacklogScope("p1")))

	log, err := f.svc.ListActivity(ctx, owner, "b")
	require.NoError(t, err)
	types := make([]models.ActivityType, len(log))
	for i, e := range log {
		types[i] = e.Type
	}
	assert.ElementsMatch(t, []models.ActivityType{
		models.ActivityTitleChange, models.ActivityStatusChange,
		models.ActivityPointChange, models.ActivityAssigneeChange,
	}, types)
}

func TestUpdateItem_NoChangeWritesNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a")

	title := "Item a"
	_, err := f.svc.UpdateItem(ctx, owner, "a", UpdateItemRequest{Title: &title})
	require.NoError(t, err)

	log, err := f.svc.ListActivity(ctx, owner, "a")
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestUpdateItem_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a")

	negative := -1
	badStatus := models.Status("blocked")
	empty := ""

	_, err := f.svc.UpdateItem(ctx, owner, "a", UpdateItemRequest{Point: &negative})
	assert.ErrorIs(t, err, ErrNegativePoint)
	_, err = f.svc.UpdateItem(ctx, owner, "a", UpdateItemRequest{Status: &badStatus})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	_, err = f.svc.UpdateItem(ctx, owner, "a", UpdateItemRequest{Title: &empty})
	assert.ErrorIs(t, err, ErrEmptyTitle)
	_, err = f.svc.UpdateItem(ctx, owner, "a", UpdateItemRequest{AssigneeID: strPtr(outsider.UserID)})
	assert.ErrorIs(t, err, ErrAssigneeNotMember)
	_, err = f.svc.UpdateItem(ctx, owner, "ghost", UpdateItemRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteItem_RelinksAndPurgesActivity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	scope := models.BacklogScope("p1")
	testutil.CreateTestChain(t, f.repo, scope, "a", "b", "c")

	_, err := f.svc.ReorderItem(ctx, owner, "c", ReorderRequest{InsertPosition: 0})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteItem(ctx, owner, "a"))

	assert.Equal(t, []string{"c", "b"}, f.order(t, scope))
	_, err = f.svc.GetItem(ctx, owner, "a")
	assert.ErrorIs(t, err, models.ErrNotFound)

	remaining, err := f.repo.Activity.ListByItem(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, f.svc.DeleteItem(ctx, owner, "a"), models.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, outsider, "b"), models.ErrForbidden)
}

// ============================================================================
// CACHE
// ============================================================================

func TestListItems_CacheEvictedOnWrite(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := setup(t, WithCache(cache.New(client, time.Minute)))
	ctx := context.Background()
	testutil.CreateTestChain(t, f.repo, models.BacklogScope("p1"), "a", "b")

	page, err := f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(page.Items))
	assert.Len(t, mr.Keys(), 1)

	_, err = f.svc.ReorderItem(ctx, owner, "b", ReorderRequest{InsertPosition: 0})
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())

	page, err = f.svc.ListItems(ctx, owner, ListItemsRequest{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(page.Items))
}
