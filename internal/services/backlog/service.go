// Package backlog implements the backlog use cases on top of the ordering
// engine: every mutation runs under per-scope locks inside one transaction,
// records activity, then evicts cached orders and publishes a change event.
package backlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/cache"
	"github.com/thenoetrevino/projecthub/internal/chain"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/events"
	"github.com/thenoetrevino/projecthub/internal/lock"
	"github.com/thenoetrevino/projecthub/internal/models"
)

const instrumentationScope = "github.com/thenoetrevino/projecthub/internal/services/backlog"

// scopeRetries bounds how often a mutation re-locks after its item moved.
const scopeRetries = 3

// Service defines all backlog-related business operations
type Service interface {
	// Read operations
	GetItem(ctx context.Context, caller models.Caller, itemID string) (*models.BacklogItem, error)
	ListItems(ctx context.Context, caller models.Caller, req ListItemsRequest) (*ItemPage, error)
	ListActivity(ctx context.Context, caller models.Caller, itemID string) ([]*models.ActivityLog, error)

	// Write operations
	CreateItem(ctx context.Context, caller models.Caller, req CreateItemRequest) (*models.BacklogItem, error)
	UpdateItem(ctx context.Context, caller models.Caller, itemID string, req UpdateItemRequest) (*models.BacklogItem, error)
	ReorderItem(ctx context.Context, caller models.Caller, itemID string, req ReorderRequest) (*models.BacklogItem, error)
	DeleteItem(ctx context.Context, caller models.Caller, itemID string) error
}

// Authorizer decides whether a caller may act inside a project.
type Authorizer interface {
	Authorize(ctx context.Context, caller models.Caller, projectID string, action auth.Action) error
}

// CreateItemRequest encapsulates data for creating a backlog item
type CreateItemRequest struct {
	ProjectID string
	Title     string
	SprintID  *string // nil = project backlog
}

// UpdateItemRequest carries optional field edits; nil fields are left alone.
type UpdateItemRequest struct {
	Title      *string
	Status     *models.Status
	Priority   *models.Priority
	Point      *int
	AssigneeID *string
}

// ReorderRequest moves an item to InsertPosition (zero-based) of the target
// sprint, or of the project backlog when TargetSprintID is nil.
type ReorderRequest struct {
	TargetSprintID *string
	InsertPosition int
}

// ListItemsRequest selects one scope, optional filters and a page.
// Page is zero-based; Size zero returns every item.
type ListItemsRequest struct {
	ProjectID string
	SprintID  *string
	Status    *models.Status
	Priority  *models.Priority
	Page      int
	Size      int
}

// ItemPage is an ordered slice of a scope.
type ItemPage struct {
	Items      []*models.BacklogItem `json:"items"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"totalPages"`
}

// Option configures the service.
type Option func(*service)

// WithEventPublisher enables live-update notifications.
func WithEventPublisher(p events.EventPublisher) Option {
	return func(s *service) { s.eventClient = p }
}

// WithCache enables the Redis order cache.
func WithCache(c *cache.OrderCache) Option {
	return func(s *service) { s.cache = c }
}

// WithLocks shares a lock table between services of one process.
func WithLocks(l *lock.KeyedMutex) Option {
	return func(s *service) { s.locks = l }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrictReads makes listing a scope with unreachable items fail instead
// of returning the reachable part.
func WithStrictReads(strict bool) Option {
	return func(s *service) { s.strictReads = strict }
}

// WithIDGenerator replaces uuid.NewString, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *service) { s.newID = fn }
}

// service implements Service on top of the chain engine
type service struct {
	repo        *database.Repository
	authz       Authorizer
	eventClient events.EventPublisher
	cache       *cache.OrderCache
	locks       *lock.KeyedMutex
	logger      *slog.Logger
	strictReads bool
	newID       func() string

	tracer  trace.Tracer
	moves   metric.Int64Counter
	corrupt metric.Int64Counter
}

// NewService creates a new backlog service
func NewService(repo *database.Repository, authz Authorizer, opts ...Option) Service {
	s := &service{
		repo:   repo,
		authz:  authz,
		locks:  lock.New(),
		logger: slog.Default(),
		newID:  uuid.NewString,
		tracer: otel.Tracer(instrumentationScope),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationScope)
	s.moves, _ = meter.Int64Counter("projecthub.backlog.reorders",
		metric.WithDescription("Backlog items moved"))
	s.corrupt, _ = meter.Int64Counter("projecthub.backlog.corrupted_chains",
		metric.WithDescription("Scopes found with items unreachable from the head"))
	return s
}

// engine binds the ordering engine to a transaction-scoped repository.
func (s *service) engine(tx *database.Repository) *chain.Engine {
	return chain.NewEngine(tx.Items,
		chain.WithSprintLookup(tx.Sprints),
		chain.WithDependentPurger(tx.Activity),
		chain.WithLogger(s.logger),
	)
}

func (s *service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "backlog."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ============================================================================
// READS
// ============================================================================

// GetItem retrieves a single item the caller may read
func (s *service) GetItem(ctx context.Context, caller models.Caller, itemID string) (*models.BacklogItem, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrInvalidItemID
	}
	item, err := s.repo.Items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, item.ProjectID, auth.ActionRead); err != nil {
		return nil, err
	}
	return item, nil
}

// ListActivity returns the item's history, newest first
func (s *service) ListActivity(ctx context.Context, caller models.Caller, itemID string) ([]*models.ActivityLog, error) {
	if _, err := s.GetItem(ctx, caller, itemID); err != nil {
		return nil, err
	}
	return s.repo.Activity.ListByItem(ctx, itemID)
}

// ListItems returns a scope in chain order, filtered and paginated
func (s *service) ListItems(ctx context.Context, caller models.Caller, req ListItemsRequest) (*ItemPage, error) {
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidProjectID
	}
	if req.Page < 0 || req.Size < 0 {
		return nil, ErrInvalidPage
	}
	if _, err := s.repo.Projects.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, req.ProjectID, auth.ActionRead); err != nil {
		return nil, err
	}

	scope := models.BacklogScope(req.ProjectID)
	if req.SprintID != nil {
		sprint, err := s.repo.Sprints.GetSprint(ctx, *req.SprintID)
		if err != nil {
			return nil, err
		}
		if sprint.ProjectID != req.ProjectID {
			return nil, ErrSprintNotInProject
		}
		scope = models.SprintScope(req.ProjectID, sprint.ID)
	}

	ordered, err := s.loadOrder(ctx, scope)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.BacklogItem, 0, len(ordered))
	for _, item := range ordered {
		if req.Status != nil && item.Status != *req.Status {
			continue
		}
		if req.Priority != nil && item.Priority != *req.Priority {
			continue
		}
		filtered = append(filtered, item)
	}

	return paginate(filtered, req.Page, req.Size), nil
}

// loadOrder serves a scope from the cache or reconstructs it. A miss is
// filled under the scope lock so a concurrent writer cannot be overtaken by
// a stale fill.
func (s *service) loadOrder(ctx context.Context, scope models.Scope) ([]*models.BacklogItem, error) {
	if items, ok := s.cache.Load(ctx, scope); ok {
		return items, nil
	}

	unlock, err := s.locks.Lock(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := chain.NewEngine(s.repo.Items, chain.WithLogger(s.logger)).Load(ctx, scope)
	if err != nil {
		if errors.Is(err, models.ErrChainCorrupted) {
			s.corrupt.Add(ctx, 1)
		}
		return nil, err
	}

	if len(c.Orphans) > 0 {
		s.corrupt.Add(ctx, 1)
		if s.strictReads {
			return nil, c.Verify()
		}
		ids := make([]string, len(c.Orphans))
		for i, o := range c.Orphans {
			ids[i] = o.ID
		}
		s.logger.Warn("backlog chain has unreachable items, omitting them",
			"scope", scope.Key(), "orphans", ids)
		// partial orders are not cached so the warning repeats until repaired
		return c.Items, nil
	}

	s.cache.Store(ctx, scope, c.Items)
	return c.Items, nil
}

func paginate(items []*models.BacklogItem, page, size int) *ItemPage {
	total := len(items)
	if size == 0 {
		return &ItemPage{Items: items, Page: 0, Size: total, Total: total, TotalPages: 1}
	}

	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	// compare pages before multiplying so huge values cannot overflow
	start, end := total, total
	if page < totalPages {
		start = page * size
		end = min(start+size, total)
	}
	return &ItemPage{
		Items:      items[start:end],
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ============================================================================
// WRITES
// ============================================================================

// CreateItem appends a new item at the tail of its scope
func (s *service) CreateItem(ctx context.Context, caller models.Caller, req CreateItemRequest) (item *models.BacklogItem, err error) {
	ctx, span := s.startSpan(ctx, "create", attribute.String("project_id", req.ProjectID))
	defer func() { endSpan(span, err) }()

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, ErrInvalidProjectID
	}
	if _, err := s.repo.Projects.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, caller, req.ProjectID, auth.ActionEditBacklog); err != nil {
		return nil, err
	}

	item = &models.BacklogItem{
		ID:         s.newID(),
		ProjectID:  req.ProjectID,
		SprintID:   models.CopyID(req.SprintID),
		Title:      title,
		Status:     models.StatusTodo,
		Priority:   models.PriorityLow,
		AssigneeID: caller.UserID,
		CreatorID:  caller.UserID,
	}
	scope := item.Scope()

	unlock, err := s.locks.Lock(ctx, scope.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.repo.WithTx(ctx, func(tx *database.Repository) error {
		if err := s.engine(tx).Append(ctx, item); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, s.activity(item.ID, caller, models.ActivityCreated,
			fmt.Sprintf("Backlog '%s' was created by %s.", item.Title, caller.DisplayName()), nil, nil))
	})
	if err != nil {
		return nil, fmt.Errorf("creating backlog item: %w", err)
	}

	s.afterCommit(ctx, scope)
	s.logger.Info("backlog item created", "item_id", item.ID, "scope", scope.Key(), "user", caller.UserID)
	return item, nil
}

// UpdateItem applies field edits and records one activity entry per change
func (s *service) UpdateItem(ctx context.Context, caller models.Caller, itemID string, req UpdateItemRequest) (item *models.BacklogItem, err error) {
	ctx, span := s.startSpan(ctx, "update", attribute.String("item_id", itemID))
	defer func() { endSpan(span, err) }()

	if err := s.validateUpdate(&req); err != nil {
		return nil, err
	}

	err = s.withItemLock(ctx, caller, itemID, auth.ActionEditBacklog, func(tx *database.Repository, current *models.BacklogItem) error {
		if req.AssigneeID != nil && *req.AssigneeID != current.AssigneeID {
			if _, err := tx.Projects.GetMember(ctx, current.ProjectID, *req.AssigneeID); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return ErrAssigneeNotMember
				}
				return err
			}
		}

		changes := s.applyUpdate(current, caller, req)
		if len(changes) == 0 {
			item = current
			return nil
		}
		if err := tx.Items.Save(ctx, current); err != nil {
			return err
		}
		for _, entry := range changes {
			if err := tx.Activity.Create(ctx, entry); err != nil {
				return err
			}
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, item.Scope())
	return item, nil
}

// DeleteItem unlinks and removes an item together with its activity
func (s *service) DeleteItem(ctx context.Context, caller models.Caller, itemID string) (err error) {
	ctx, span := s.startSpan(ctx, "delete", attribute.String("item_id", itemID))
	defer func() { endSpan(span, err) }()

	var scope models.Scope
	err = s.withItemLock(ctx, caller, itemID, auth.ActionEditBacklog, func(tx *database.Repository, current *models.BacklogItem) error {
		scope = current.Scope()
		_, err := s.engine(tx).Delete(ctx, current.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, scope)
	s.logger.Info("backlog item deleted", "item_id", itemID, "scope", scope.Key(), "user", caller.UserID)
	return nil
}

// withItemLock loads the item, authorizes the caller, locks the item's
// scope and runs fn in a transaction with a fresh copy of the item. When the
// item moved to another scope before the lock was granted it starts over.
func (s *service) withItemLock(ctx context.Context, caller models.Caller, itemID string, action auth.Action,
	fn func(tx *database.Repository, item *models.BacklogItem) error) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrInvalidItemID
	}

	for attempt := 0; ; attempt++ {
		item, err := s.repo.Items.Get(ctx, itemID)
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, caller, item.ProjectID, action); err != nil {
			return err
		}
		locked := item.Scope()

		err = s.withScopeLocks(ctx, []models.Scope{locked}, func() error {
			return s.repo.WithTx(ctx, func(tx *database.Repository) error {
				current, err := tx.Items.Get(ctx, itemID)
				if err != nil {
					return err
				}
				if !current.Scope().Equal(locked) {
					return errScopeChanged
				}
				return fn(tx, current)
			})
		})
		if errors.Is(err, errScopeChanged) && attempt < scopeRetries {
			continue
		}
		return err
	}
}

func (s *service) withScopeLocks(ctx context.Context, scopes []models.Scope, fn func() error) error {
	keys := make([]string, len(scopes))
	for i, sc := range scopes {
		keys[i] = sc.Key()
	}
	unlock, err := s.locks.LockAll(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// afterCommit evicts cached orders and notifies listeners. Neither can fail
// the operation.
func (s *service) afterCommit(ctx context.Context, scopes ...models.Scope) {
	s.cache.Evict(ctx, scopes...)

	if s.eventClient == nil {
		return
	}
	for _, scope := range scopes {
		event := events.Event{
			Type:      events.EventBacklogChanged,
			ProjectID: scope.ProjectID,
			SprintID:  models.CopyID(scope.SprintID),
		}
		if err := events.PublishWithRetry(s.eventClient, event, 3); err != nil {
			s.logger.Warn("failed to publish backlog change", "scope", scope.Key(), "error", err)
		}
	}
}

func (s *service) activity(itemID string, caller models.Caller, typ models.ActivityType, description string, oldValue, newValue *string) *models.ActivityLog {
	return &models.ActivityLog{
		ID:          s.newID(),
		ItemID:      itemID,
		UserID:      caller.UserID,
		Type:        typ,
		Description: description,
		OldValue:    oldValue,
		NewValue:    newValue,
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if len([]rune(title)) > models.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func (s *service) validateUpdate(req *UpdateItemRequest) error {
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return err
		}
		req.Title = &title
	}
	if req.Status != nil {
		status, err := models.ParseStatus(string(*req.Status))
		if err != nil {
			return err
		}
		req.Status = &status
	}
	if req.Priority != nil {
		priority, err := models.ParsePriority(string(*req.Priority))
		if err != nil {
			return err
		}
		req.Priority = &priority
	}
	if req.Point != nil && *req.Point < 0 {
		return ErrNegativePoint
	}
	return nil
}
