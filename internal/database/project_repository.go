package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/thenoetrevino/projecthub/internal/models"
)

// ProjectRepo handles projects and their members.
type ProjectRepo struct {
	c conn
}

// Create inserts a project.
func (r *ProjectRepo) Create(ctx context.Context, project *models.Project) error {
	ts := now()
	project.CreatedAt, project.UpdatedAt = ts, ts
	_, err := r.c.exec(ctx,
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		project.ID, project.Name, project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

// Get retrieves a project by id.
func (r *ProjectRepo) Get(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := r.c.queryRow(ctx, `SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project %s: %w", id, err)
	}
	return &p, nil
}

// List returns every project, oldest first.
func (r *ProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.c.query(ctx, `SELECT id, name, created_at, updated_at FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	return scanProjects(rows)
}

// ListByMember returns the projects userID belongs to, oldest first.
func (r *ProjectRepo) ListByMember(ctx context.Context, userID string) ([]*models.Project, error) {
	rows, err := r.c.query(ctx,
		`SELECT p.id, p.name, p.created_at, p.updated_at
		 FROM projects p JOIN project_members m ON m.project_id = p.id
		 WHERE m.user_id = ?
		 ORDER BY p.created_at, p.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying projects of %s: %w", userID, err)
	}
	return scanProjects(rows)
}

func scanProjects(rows *sql.Rows) ([]*models.Project, error) {
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// PutMember adds a member or changes the role of an existing one.
func (r *ProjectRepo) PutMember(ctx context.Context, m *models.Member) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, user_id) DO UPDATE SET role = excluded.role`,
		m.ProjectID, m.UserID, string(m.Role), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving member %s of %s: %w", m.UserID, m.ProjectID, err)
	}
	return nil
}

// GetMember returns the membership of userID in projectID.
func (r *ProjectRepo) GetMember(ctx context.Context, projectID, userID string) (*models.Member, error) {
	var m models.Member
	err := r.c.queryRow(ctx,
		`SELECT project_id, user_id, role, created_at FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s of project %s: %w", userID, projectID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying member: %w", err)
	}
	return &m, nil
}

// ListMembers returns a project's members ordered by join time.
func (r *ProjectRepo) ListMembers(ctx context.Context, projectID string) ([]*models.Member, error) {
	rows, err := r.c.query(ctx,
		`SELECT project_id, user_id, role, created_at FROM project_members WHERE project_id = ? ORDER BY created_at, user_id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
