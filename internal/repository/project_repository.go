package repository

import (
	"context"
	"errors"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateGroup = errors.New("project group with this ID already exists")

// ProjectRepository handles project group data access.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// GetByGroupID retrieves a project by its group identifier.
func (r *ProjectRepository) GetByGroupID(ctx context.Context, groupID string) (*model.Project, error) {
	p := &model.Project{}
	err := r.pool.QueryRow(ctx,
		`SELECT p.group_id, p.project_title, p.domain, p.guide_name,
		        (SELECT COUNT(*) FROM members m WHERE m.group_id = p.group_id),
		        p.created_at, p.updated_at
		 FROM projects p WHERE p.group_id = $1`, groupID,
	).Scan(&p.GroupID, &p.Title, &p.Domain, &p.GuideName, &p.MemberCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves all project groups with their member counts.
func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.group_id, p.project_title, p.domain, p.guide_name,
		        COUNT(m.roll_no), p.created_at, p.updated_at
		 FROM projects p
		 LEFT JOIN members m ON m.group_id = p.group_id
		 GROUP BY p.group_id
		 ORDER BY p.group_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.GroupID, &p.Title, &p.Domain, &p.GuideName, &p.MemberCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ListGroupIDs retrieves every group identifier in order.
func (r *ProjectRepository) ListGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT group_id FROM projects ORDER BY group_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a new project group.
func (r *ProjectRepository) Create(ctx context.Context, p *model.Project) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO projects (group_id, project_title, domain, guide_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		p.GroupID, p.Title, p.Domain, p.GuideName,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateGroup
		}
		return err
	}
	return nil
}

// Update modifies a project's details.
func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE projects SET project_title = $1, domain = $2, guide_name = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE group_id = $4`,
		p.Title, p.Domain, p.GuideName, p.GroupID,
	)
	return err
}

// Delete removes a project group and cascades to its members and sheets.
func (r *ProjectRepository) Delete(ctx context.Context, groupID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE group_id = $1`, groupID)
	return err
}
