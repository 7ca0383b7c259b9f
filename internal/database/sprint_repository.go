package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// SprintRepo handles sprint rows.
type SprintRepo struct {
	c conn
}

const sprintColumns = `id, project_id, name, goal, status, start_date, end_date, created_at, updated_at`

func scanSprint(s rowScanner) (*models.Sprint, error) {
	var (
		sprint     models.Sprint
		start, end sql.NullTime
	)
	if err := s.Scan(&sprint.ID, &sprint.ProjectID, &sprint.Name, &sprint.Goal, &sprint.Status,
		&start, &end, &sprint.CreatedAt, &sprint.UpdatedAt); err != nil {
		return nil, err
	}
	sprint.StartDate = nullTimeToPtr(start)
	sprint.EndDate = nullTimeToPtr(end)
	return &sprint, nil
}

// Create inserts a new sprint, stamping its timestamps.
func (r *SprintRepo) Create(ctx context.Context, sprint *models.Sprint) error {
	ts := now()
	sprint.CreatedAt, sprint.UpdatedAt = ts, ts

	_, err := r.c.exec(ctx,
		`INSERT INTO sprints (`+sprintColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sprint.ID, sprint.ProjectID, sprint.Name, sprint.Goal, string(sprint.Status),
		nullTime(sprint.StartDate), nullTime(sprint.EndDate), sprint.CreatedAt, sprint.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting sprint: %w", err)
	}
	return nil
}

// GetSprint retrieves a sprint by id. It satisfies chain.SprintLookup.
func (r *SprintRepo) GetSprint(ctx context.Context, id string) (*models.Sprint, error) {
	sprint, err := scanSprint(r.c.queryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sprint %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying sprint %s: %w", id, err)
	}
	return sprint, nil
}

// ListByProject returns a project's sprints, oldest first.
func (r *SprintRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Sprint, error) {
	rows, err := r.c.query(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying sprints for project: %w", err)
	}
	defer rows.Close()

	var sprints []*models.Sprint
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sprint: %w", err)
		}
		sprints = append(sprints, sprint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sprints: %w", err)
	}
	return sprints, nil
}

// Update rewrites the mutable fields of a sprint: goal, status and dates.
func (r *SprintRepo) Update(ctx context.Context, sprint *models.Sprint) error {
	sprint.UpdatedAt = now()
	res, err := r.c.exec(ctx,
		`UPDATE sprints SET goal = ?, status = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
		sprint.Goal, string(sprint.Status), nullTime(sprint.StartDate), nullTime(sprint.EndDate),
		sprint.UpdatedAt, sprint.ID)
	if err != nil {
		return fmt.Errorf("updating sprint %s: %w", sprint.ID, err)
	}
	return rowsAffected(res, fmt.Errorf("sprint %s: %w", sprint.ID, models.ErrNotFound))
}
