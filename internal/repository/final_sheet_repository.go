package repository

import (
	"context"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FinalSheetRepository stores the overall comments entered on the final
// sheet page, one row per group.
type FinalSheetRepository struct {
	pool *pgxpool.Pool
}

// NewFinalSheetRepository creates a new FinalSheetRepository.
func NewFinalSheetRepository(pool *pgxpool.Pool) *FinalSheetRepository {
	return &FinalSheetRepository{pool: pool}
}

// GetComments loads a group's overall comments. A group without a saved
// remark returns an empty comment, not an error.
func (r *FinalSheetRepository) GetComments(ctx context.Context, groupID string) (*model.FinalComments, error) {
	c := &model.FinalComments{GroupID: groupID}
	err := r.pool.QueryRow(ctx,
		`SELECT overall_comments, updated_at FROM final_sheet WHERE group_id = $1`,
		groupID,
	).Scan(&c.Comments, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return c, nil
		}
		return nil, err
	}
	return c, nil
}

// SaveComments upserts a group's overall comments.
func (r *FinalSheetRepository) SaveComments(ctx context.Context, groupID, comments string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO final_sheet (group_id, overall_comments)
		 VALUES ($1, $2)
		 ON CONFLICT (group_id)
		 DO UPDATE SET overall_comments = EXCLUDED.overall_comments,
		               updated_at = CURRENT_TIMESTAMP`,
		groupID, comments)
	return err
}
