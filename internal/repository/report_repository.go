package repository

import (
	"context"
	"time"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository handles generated PDF log data access.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Insert records a freshly generated PDF.
func (r *ReportRepository) Insert(ctx context.Context, l *model.ReportLog) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO report_logs (group_id, review_number, file_name, generated_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, generated_at`,
		l.GroupID, l.ReviewNumber, l.FileName, l.GeneratedBy,
	).Scan(&l.ID, &l.GeneratedAt)
}

// LatestForGroup retrieves the newest log entry for a group and review.
func (r *ReportRepository) LatestForGroup(ctx context.Context, groupID string, reviewNumber int) (*model.ReportLog, error) {
	l := &model.ReportLog{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, group_id, review_number, file_name, generated_by, generated_at
		 FROM report_logs
		 WHERE group_id = $1 AND review_number = $2
		 ORDER BY generated_at DESC LIMIT 1`, groupID, reviewNumber,
	).Scan(&l.ID, &l.GroupID, &l.ReviewNumber, &l.FileName, &l.GeneratedBy, &l.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListRecent retrieves the newest log entries across all groups.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]model.ReportLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, review_number, file_name, generated_by, generated_at
		 FROM report_logs
		 ORDER BY generated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.ReportLog
	for rows.Next() {
		var l model.ReportLog
		if err := rows.Scan(&l.ID, &l.GroupID, &l.ReviewNumber, &l.FileName, &l.GeneratedBy, &l.GeneratedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteOlderThan removes log entries generated before the cutoff and
// returns the file names so the janitor can unlink them from disk.
func (r *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`DELETE FROM report_logs WHERE generated_at < $1 RETURNING file_name`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
