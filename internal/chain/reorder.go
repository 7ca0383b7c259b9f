package chain

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// Move describes a completed reorder.
type Move struct {
	// Item is the moved item as persisted.
	Item *models.BacklogItem
	From models.Scope
	To   models.Scope
	// FromSprint and ToSprint are set when the corresponding scope is a sprint.
	FromSprint *models.Sprint
	ToSprint   *models.Sprint
	// Index is the zero-based position the item now occupies in To.
	Index int
}

// CrossesContainer reports whether the item changed scope.
func (m *Move) CrossesContainer() bool {
	return !m.From.Equal(m.To)
}

// Reorder moves an item to position index of the target scope. A nil
// targetSprintID targets the project backlog of the item. index counts
// positions in the target chain with the moving item left out, so it must be
// within [0, len].
//
// All validation happens before the first write. The writes are, in order:
// the old successor is pointed at the item's old predecessor, the neighbour
// that must point at the item is saved, and finally the item itself.
func (e *Engine) Reorder(ctx context.Context, itemID string, targetSprintID *string, index int) (*Move, error) {
	item, err := e.store.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", itemID, err)
	}

	from := item.Scope()
	to, toSprint, err := e.resolveTarget(ctx, item.ProjectID, targetSprintID)
	if err != nil {
		return nil, err
	}

	var fromSprint *models.Sprint
	if !from.Equal(to) {
		if from.SprintID != nil && e.sprints != nil {
			// The old sprint only names the source location; a lookup miss is not fatal.
			if s, err := e.sprints.GetSprint(ctx, *from.SprintID); err == nil {
				fromSprint = s
			}
		}
		if _, err := e.loadStrict(ctx, from); err != nil {
			return nil, err
		}
	} else {
		fromSprint = toSprint
	}

	target, err := e.loadStrict(ctx, to)
	if err != nil {
		return nil, err
	}
	targetList := target.Without(item.ID)

	if index < 0 || index > len(targetList) {
		return nil, fmt.Errorf("%w: insert position %d out of range, must be between 0 and %d",
			models.ErrInvalidArgument, index, len(targetList))
	}

	if err := e.detach(ctx, item, targetList); err != nil {
		return nil, err
	}

	item.PrevItemID = nil
	if !from.Equal(to) {
		item.SprintID = models.CopyID(to.SprintID)
	}

	switch {
	case len(targetList) == 0:
		// sole item, stays a head
	case index == 0:
		head := targetList[0]
		head.PrevItemID = models.CopyID(&item.ID)
		if err := e.store.Save(ctx, head); err != nil {
			return nil, fmt.Errorf("relinking head %s: %w", head.ID, err)
		}
	case index == len(targetList):
		tail := targetList[len(targetList)-1]
		item.PrevItemID = models.CopyID(&tail.ID)
	default:
		prev, next := targetList[index-1], targetList[index]
		item.PrevItemID = models.CopyID(&prev.ID)
		next.PrevItemID = models.CopyID(&item.ID)
		if err := e.store.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("relinking %s: %w", next.ID, err)
		}
	}

	if err := e.store.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("saving item %s: %w", item.ID, err)
	}

	e.logger.Debug("reordered backlog item",
		"item_id", item.ID, "from", from.Key(), "to", to.Key(), "index", index)

	return &Move{
		Item:       item,
		From:       from,
		To:         to,
		FromSprint: fromSprint,
		ToSprint:   toSprint,
		Index:      index,
	}, nil
}
