package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ItemRepo handles backlog item rows. It is the chain.ItemStore used by the
// ordering engine and holds no ordering logic of its own.
type ItemRepo struct {
	c conn
}

const itemColumns = `id, project_id, sprint_id, prev_item_id, title, status, priority, point,
	assignee_id, creator_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*models.BacklogItem, error) {
	var (
		item     models.BacklogItem
		sprintID sql.NullString
		prevID   sql.NullString
	)
	err := s.Scan(
		&item.ID, &item.ProjectID, &sprintID, &prevID, &item.Title, &item.Status, &item.Priority,
		&item.Point, &item.AssigneeID, &item.CreatorID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.SprintID = nullStringToPtr(sprintID)
	item.PrevItemID = nullStringToPtr(prevID)
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]*models.BacklogItem, error) {
	defer rows.Close()

	var items []*models.BacklogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning backlog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating backlog items: %w", err)
	}
	return items, nil
}

// Get retrieves a single item by id.
func (r *ItemRepo) Get(ctx context.Context, id string) (*models.BacklogItem, error) {
	row := r.c.queryRow(ctx, `SELECT `+itemColumns+` FROM backlog_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backlog item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying backlog item %s: %w", id, err)
	}
	return item, nil
}

// Save inserts the item or overwrites every mutable column of an existing row.
// CreatedAt is filled when zero and UpdatedAt is always refreshed.
func (r *ItemRepo) Save(ctx context.Context, item *models.BacklogItem) error {
	ts := now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = ts
	}
	item.UpdatedAt = ts

	_, err := r.c.exec(ctx, `
		INSERT INTO backlog_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			project_id = excluded.project_id,
			sprint_id = excluded.sprint_id,
			prev_item_id = excluded.prev_item_id,
			title = excluded.title,
			status = excluded.status,
			priority = excluded.priority,
			point = excluded.point,
			assignee_id = excluded.assignee_id,
			updated_at = excluded.updated_at`,
		item.ID, item.ProjectID, nullString(item.SprintID), nullString(item.PrevItemID),
		item.Title, string(item.Status), string(item.Priority), item.Point,
		item.AssigneeID, item.CreatorID, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving backlog item %s: %w", item.ID, err)
	}
	return nil
}

// FindAllInScope returns the unordered items of a project backlog or sprint.
func (r *ItemRepo) FindAllInScope(ctx context.Context, scope models.Scope) ([]*models.BacklogItem, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if scope.IsBacklog() {
		rows, err = r.c.query(ctx,
			`SELECT `+itemColumns+` FROM backlog_items WHERE project_id = ? AND sprint_id IS NULL`,
			scope.ProjectID)
	} else {
		rows, err = r.c.query(ctx,
			`SELECT `+itemColumns+` FROM backlog_items WHERE project_id = ? AND sprint_id = ?`,
			scope.ProjectID, *scope.SprintID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying items of %s: %w", scope, err)
	}
	return scanItems(rows)
}

// FindSuccessorOf returns the item whose prev pointer is item.ID, or nil.
func (r *ItemRepo) FindSuccessorOf(ctx context.Context, item *models.BacklogItem) (*models.BacklogItem, error) {
	row := r.c.queryRow(ctx,
		`SELECT `+itemColumns+` FROM backlog_items WHERE prev_item_id = ? AND project_id = ? LIMIT 1`,
		item.ID, item.ProjectID)
	next, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying successor of %s: %w", item.ID, err)
	}
	return next, nil
}

// Delete removes the item row.
func (r *ItemRepo) Delete(ctx context.Context, item *models.BacklogItem) error {
	res, err := r.c.exec(ctx, `DELETE FROM backlog_items WHERE id = ?`, item.ID)
	if err != nil {
		return fmt.Errorf("deleting backlog item %s: %w", item.ID, err)
	}
	return rowsAffected(res, fmt.Errorf("backlog item %s: %w", item.ID, models.ErrNotFound))
}

// CountInProject reports how many items a project holds across all scopes.
func (r *ItemRepo) CountInProject(ctx context.Context, projectID string) (int, error) {
	var n int
	if err := r.c.queryRow(ctx, `SELECT COUNT(*) FROM backlog_items WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items of project %s: %w", projectID, err)
	}
	return n, nil
}
