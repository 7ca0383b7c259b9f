package backlog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/thenoetrevino/projecthub/internal/auth"
	"github.com/thenoetrevino/projecthub/internal/chain"
	"github.com/thenoetrevino/projecthub/internal/database"
	"github.com/thenoetrevino/projecthub/internal/models"
)

// ReorderItem moves an item inside its scope or into another scope of the
// same project. Both the source and target scope are locked for the whole
// transaction.
func (s *service) ReorderItem(ctx context.Context, caller models.Caller, itemID string, req ReorderRequest) (moved *models.BacklogItem, err error) {
	ctx, span := s.startSpan(ctx, "reorder",
		attribute.String("item_id", itemID),
		attribute.Int("insert_position", req.InsertPosition))
	defer func() { endSpan(span, err) }()

	if itemID == "" {
		return nil, ErrInvalidItemID
	}

	var move *chain.Move
	for attempt := 0; ; attempt++ {
		item, err := s.repo.Items.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if err := s.authz.Authorize(ctx, caller, item.ProjectID, auth.ActionEditBacklog); err != nil {
			return nil, err
		}

		source := item.Scope()
		target := models.BacklogScope(item.ProjectID)
		if req.TargetSprintID != nil {
			target = models.SprintScope(item.ProjectID, *req.TargetSprintID)
		}

		err = s.withScopeLocks(ctx, []models.Scope{source, target}, func() error {
			return s.repo.WithTx(ctx, func(tx *database.Repository) error {
				current, err := tx.Items.Get(ctx, itemID)
				if err != nil {
					return err
				}
				if !current.Scope().Equal(source) {
					return errScopeChanged
				}

				m, err := s.engine(tx).Reorder(ctx, itemID, req.TargetSprintID, req.InsertPosition)
				if err != nil {
					return err
				}
				move = m
				return s.recordMove(ctx, tx, caller, m)
			})
		})
		if errors.Is(err, errScopeChanged) && attempt < scopeRetries {
			continue
		}
		if err != nil {
			return nil, err
		}
		break
	}

	s.moves.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cross_container", move.CrossesContainer())))
	if move.CrossesContainer() {
		s.afterCommit(ctx, move.From, move.To)
	} else {
		s.afterCommit(ctx, move.To)
	}

	s.logger.Info("backlog item reordered",
		"item_id", move.Item.ID,
		"from", move.From.Key(),
		"to", move.To.Key(),
		"index", move.Index,
		"user", caller.UserID)
	return move.Item, nil
}

// recordMove writes the reorder history entry under the scope locks. The
// move stands even if the entry cannot be written.
func (s *service) recordMove(ctx context.Context, tx *database.Repository, caller models.Caller, move *chain.Move) error {
	from, to := locationName(move.FromSprint), locationName(move.ToSprint)
	entry := s.activity(move.Item.ID, caller, models.ActivityReordered,
		fmt.Sprintf("Backlog '%s' was moved by %s from %s to %s at position %d.",
			move.Item.Title, caller.DisplayName(), from, to, move.Index+1),
		&from, &to)

	err := tx.Savepoint(ctx, "reorder_activity", func() error {
		return tx.Activity.Create(ctx, entry)
	})
	if errors.Is(err, database.ErrTxAborted) {
		return err
	}
	if err != nil {
		s.logger.Warn("failed to record reorder activity", "item_id", move.Item.ID, "error", err)
	}
	return nil
}

func locationName(sprint *models.Sprint) string {
	if sprint == nil {
		return models.BacklogLocationName
	}
	return sprint.Name
}

// applyUpdate mutates item in place and returns the activity entries for the
// fields that actually changed.
func (s *service) applyUpdate(item *models.BacklogItem, caller models.Caller, req UpdateItemRequest) []*models.ActivityLog {
	var changes []*models.ActivityLog
	record := func(typ models.ActivityType, field, oldValue, newValue string) {
		changes = append(changes, s.activity(item.ID, caller, typ,
			fmt.Sprintf("Backlog '%s' %s was changed by %s from %s to %s.",
				item.Title, field, caller.DisplayName(), oldValue, newValue),
			&oldValue, &newValue))
	}

	if req.Title != nil && *req.Title != item.Title {
		old := item.Title
		item.Title = *req.Title
		record(models.ActivityTitleChange, "title", old, item.Title)
	}
	if req.Status != nil && *req.Status != item.Status {
		old := item.Status
		item.Status = *req.Status
		record(models.ActivityStatusChange, "status", string(old), string(item.Status))
	}
	if req.Priority != nil && *req.Priority != item.Priority {
		old := item.Priority
		item.Priority = *req.Priority
		record(models.ActivityPriorityChange, "priority", string(old), string(item.Priority))
	}
	if req.Point != nil && *req.Point != item.Point {
		old := item.Point
		item.Point = *req.Point
		record(models.ActivityPointChange, "point", strconv.Itoa(old), strconv.Itoa(item.Point))
	}
	if req.AssigneeID != nil && *req.AssigneeID != item.AssigneeID {
		old := item.AssigneeID
		item.AssigneeID = *req.AssigneeID
		record(models.ActivityAssigneeChange, "assignee", old, item.AssigneeID)
	}
	return changes
}
