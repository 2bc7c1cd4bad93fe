package repository

import (
	"context"
	"encoding/json"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResponseRepository handles questionnaire data access. Responses for a
// whole submission are stored as one jsonb document keyed by the raw
// question codes, so codes with dots round-trip untouched.
type ResponseRepository struct {
	pool *pgxpool.Pool
}

// NewResponseRepository creates a new ResponseRepository.
func NewResponseRepository(pool *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{pool: pool}
}

// Upsert saves a group's submission for one review and reports whether the
// row was created or updated. xmax is zero only for a freshly inserted tuple.
func (r *ResponseRepository) Upsert(ctx context.Context, sheet *model.ResponseSheet) (*model.SaveResponsesResult, error) {
	responses, err := json.Marshal(sheet.Responses)
	if err != nil {
		return nil, err
	}

	res := &model.SaveResponsesResult{}
	var inserted bool
	err = r.pool.QueryRow(ctx,
		`INSERT INTO review_responses (group_id, review_number, submission_date, comments, responses)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (group_id, review_number)
		 DO UPDATE SET submission_date = EXCLUDED.submission_date,
		               comments = EXCLUDED.comments,
		               responses = EXCLUDED.responses,
		               updated_at = CURRENT_TIMESTAMP
		 RETURNING (xmax = 0), updated_at`,
		sheet.GroupID, sheet.ReviewNumber, sheet.SubmissionDate, sheet.Comments, responses,
	).Scan(&inserted, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if inserted {
		res.Action = "created"
	} else {
		res.Action = "updated"
	}
	return res, nil
}

// Get retrieves a group's stored submission for one review. A missing row
// surfaces pgx.ErrNoRows so callers can answer 404.
func (r *ResponseRepository) Get(ctx context.Context, groupID string, reviewNumber int) (*model.ResponseSheet, error) {
	sheet := &model.ResponseSheet{
		GroupID:      groupID,
		ReviewNumber: reviewNumber,
		Responses:    make(map[string]string),
	}
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT to_char(submission_date, 'YYYY-MM-DD'), comments, responses, created_at, updated_at
		 FROM review_responses
		 WHERE group_id = $1 AND review_number = $2`, groupID, reviewNumber,
	).Scan(&sheet.SubmissionDate, &sheet.Comments, &raw, &sheet.CreatedAt, &sheet.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &sheet.Responses); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}
