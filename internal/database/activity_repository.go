package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ActivityRepo handles the per-item history.
type ActivityRepo struct {
	c conn
}

// Create appends an entry. CreatedAt is stamped when zero.
func (r *ActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO activity_logs (id, item_id, user_id, type, description, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ItemID, entry.UserID, string(entry.Type), entry.Description,
		nullString(entry.OldValue), nullString(entry.NewValue), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity for %s: %w", entry.ItemID, err)
	}
	return nil
}

// ListByItem returns an item's history, newest first.
func (r *ActivityRepo) ListByItem(ctx context.Context, itemID string) ([]*models.ActivityLog, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, item_id, user_id, type, description, old_value, new_value, created_at
		FROM activity_logs WHERE item_id = ?
		ORDER BY created_at DESC, id DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying activity for %s: %w", itemID, err)
	}
	defer rows.Close()

	var logs []*models.ActivityLog
	for rows.Next() {
		var (
			entry          models.ActivityLog
			oldVal, newVal sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.ItemID, &entry.UserID, &entry.Type, &entry.Description,
			&oldVal, &newVal, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		entry.OldValue = nullStringToPtr(oldVal)
		entry.NewValue = nullStringToPtr(newVal)
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity: %w", err)
	}
	return logs, nil
}

// DeleteDependents removes every activity row of the item. It satisfies
// chain.DependentPurger and must run before the item row is deleted.
func (r *ActivityRepo) DeleteDependents(ctx context.Context, itemID string) error {
	if _, err := r.c.exec(ctx, `DELETE FROM activity_logs WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("deleting activity for %s: %w", itemID, err)
	}
	return nil
}
