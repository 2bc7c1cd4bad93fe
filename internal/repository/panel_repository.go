package repository

import (
	"context"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PanelRepository handles evaluator panel assignment data access.
type PanelRepository struct {
	pool *pgxpool.Pool
}

// NewPanelRepository creates a new PanelRepository.
func NewPanelRepository(pool *pgxpool.Pool) *PanelRepository {
	return &PanelRepository{pool: pool}
}

// Replace swaps an evaluator's assigned groups inside one transaction.
func (r *PanelRepository) Replace(ctx context.Context, userID int, panelName string, groupIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM panel_assignments WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, groupID := range groupIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO panel_assignments (user_id, group_id, panel_name) VALUES ($1, $2, $3)`,
			userID, groupID, panelName,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListByUser retrieves the assignments of one evaluator.
func (r *PanelRepository) ListByUser(ctx context.Context, userID int) ([]model.PanelAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, group_id, panel_name, created_at
		 FROM panel_assignments WHERE user_id = $1 ORDER BY group_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.PanelAssignment
	for rows.Next() {
		var a model.PanelAssignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.GroupID, &a.PanelName, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GroupIDsForUser retrieves just the group identifiers assigned to an
// evaluator, used to filter the dashboard.
func (r *PanelRepository) GroupIDsForUser(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id FROM panel_assignments WHERE user_id = $1 ORDER BY group_id`, userID)
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
