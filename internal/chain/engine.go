package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ErrNoSprintLookup is returned when a sprint is targeted but the engine was
// built without WithSprintLookup.
var ErrNoSprintLookup = errors.New("chain: engine has no sprint lookup")

// Engine moves, appends and removes items while keeping every scope a single
// well-formed chain.
type Engine struct {
	store   ItemStore
	sprints SprintLookup
	purger  DependentPurger
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSprintLookup enables moves and appends into sprints.
func WithSprintLookup(l SprintLookup) Option {
	return func(e *Engine) {
		e.sprints = l
	}
}

// WithDependentPurger registers cleanup run before an item row is deleted.
func WithDependentPurger(p DependentPurger) Option {
	return func(e *Engine) {
		e.purger = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine builds an engine over store, which should be bound to the
// caller's transaction.
func NewEngine(store ItemStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reconstructs a scope without rejecting orphans. Callers decide whether
// to accept a partially reachable chain.
func (e *Engine) Load(ctx context.Context, scope models.Scope) (*Chain, error) {
	items, err := e.store.FindAllInScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("loading items of %s: %w", scope, err)
	}
	c, err := Reconstruct(items)
	if err != nil {
		return nil, fmt.Errorf("reconstructing %s: %w", scope, err)
	}
	return c, nil
}

// loadStrict is Load followed by Verify. Every mutation goes through it.
func (e *Engine) loadStrict(ctx context.Context, scope models.Scope) (*Chain, error) {
	c, err := e.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, fmt.Errorf("reconstructing %s: %w", scope, err)
	}
	return c, nil
}

// resolveTarget returns the scope for sprintID inside projectID, checking the
// sprint exists and belongs to that project.
func (e *Engine) resolveTarget(ctx context.Context, projectID string, sprintID *string) (models.Scope, *models.Sprint, error) {
	if sprintID == nil {
		return models.BacklogScope(projectID), nil, nil
	}
	if e.sprints == nil {
		return models.Scope{}, nil, ErrNoSprintLookup
	}
	sprint, err := e.sprints.GetSprint(ctx, *sprintID)
	if err != nil {
		return models.Scope{}, nil, fmt.Errorf("sprint %s: %w", *sprintID, err)
	}
	if sprint.ProjectID != projectID {
		return models.Scope{}, nil, fmt.Errorf("%w: sprint %s does not belong to project %s",
			models.ErrInvalidArgument, sprint.ID, projectID)
	}
	return models.SprintScope(projectID, sprint.ID), sprint, nil
}

// Append links item behind the current tail of its scope and saves it.
// The item's SprintID selects the scope; any PrevItemID it carries is replaced.
func (e *Engine) Append(ctx context.Context, item *models.BacklogItem) error {
	scope, _, err := e.resolveTarget(ctx, item.ProjectID, item.SprintID)
	if err != nil {
		return err
	}

	c, err := e.loadStrict(ctx, scope)
	if err != nil {
		return err
	}

	item.PrevItemID = nil
	if tail := c.Tail(); tail != nil {
		item.PrevItemID = models.CopyID(&tail.ID)
	}

	if err := e.store.Save(ctx, item); err != nil {
		return fmt.Errorf("saving item %s: %w", item.ID, err)
	}

	e.logger.Debug("appended backlog item", "item_id", item.ID, "scope", scope.Key(), "position", c.Len())
	return nil
}

// Delete unlinks the item, purges its dependents and removes it. The deleted
// item is returned as it was before removal.
func (e *Engine) Delete(ctx context.Context, itemID string) (*models.BacklogItem, error) {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}

	if err := e.detach(ctx, item, nil); err != nil {
		return nil, err
	}

	if e.purger != nil {
		if err := e.purger.DeleteDependents(ctx, item.ID); err != nil {
			return nil, fmt.Errorf("purging dependents of %s: %w", item.ID, err)
		}
	}

	if err := e.store.Delete(ctx, item); err != nil {
		return nil, fmt.Errorf("deleting item %s: %w", item.ID, err)
	}

	e.logger.Debug("deleted backlog item", "item_id", item.ID, "scope", item.Scope().Key())
	return item, nil
}

// detach points the item's successor at the item's predecessor and saves the
// successor. Copies of the successor found in pending are patched as well so
// that later saves do not write a stale pointer back.
func (e *Engine) detach(ctx context.Context, item *models.BacklogItem, pending []*models.BacklogItem) error {
	next, err := e.store.FindSuccessorOf(ctx, item)
	if err != nil {
		return fmt.Errorf("finding successor of %s: %w", item.ID, err)
	}
	if next == nil {
		return nil
	}

	next.PrevItemID = models.CopyID(item.PrevItemID)
	if err := e.store.Save(ctx, next); err != nil {
		return fmt.Errorf("relinking successor %s: %w", next.ID, err)
	}

	for _, p := range pending {
		if p.ID == next.ID {
			p.PrevItemID = models.CopyID(item.PrevItemID)
		}
	}
	return nil
}
