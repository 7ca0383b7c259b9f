// Package chain maintains the order of backlog items inside a scope.
//
// Order is not stored as a rank. Each item points at the item in front of it
// (PrevItemID), so a scope is an intrusive singly linked list persisted row by
// row. The package rebuilds that list from an unordered set of rows and
// rewrites the minimum number of pointers to move, append or remove an item.
//
// Engine methods issue several dependent writes. The store handed to NewEngine
// must be bound to one transaction owned by the caller, and callers must
// serialize mutations per scope; the engine itself never commits, retries or
// spawns goroutines.
package chain

import (
	"context"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ItemStore is pure storage access for backlog items. No ordering logic lives here.
type ItemStore interface {
	// Get returns the item or an error wrapping models.ErrNotFound.
	Get(ctx context.Context, id string) (*models.BacklogItem, error)
	// Save inserts or fully updates the item.
	Save(ctx context.Context, item *models.BacklogItem) error
	// FindAllInScope returns every item of the scope in no particular order.
	FindAllInScope(ctx context.Context, scope models.Scope) ([]*models.BacklogItem, error)
	// FindSuccessorOf returns the item whose PrevItemID is item.ID, or nil.
	FindSuccessorOf(ctx context.Context, item *models.BacklogItem) (*models.BacklogItem, error)
	// Delete removes the item row.
	Delete(ctx context.Context, item *models.BacklogItem) error
}

// SprintLookup resolves sprints targeted by a reorder or an append.
type SprintLookup interface {
	// GetSprint returns the sprint or an error wrapping models.ErrNotFound.
	GetSprint(ctx context.Context, id string) (*models.Sprint, error)
}

// DependentPurger removes rows that reference an item which is about to be deleted.
type DependentPurger interface {
	DeleteDependents(ctx context.Context, itemID string) error
}
