package repository

import (
	"context"
	"strconv"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MarksRepository handles rubric mark data access. Every review shares the
// single review_marks table keyed by review number; numeric scores land in
// mark_value and single-letter flags in mark_text. Per-student totals come
// from the review_marks_totals view so they can never drift from the cells.
type MarksRepository struct {
	pool *pgxpool.Pool
}

// NewMarksRepository creates a new MarksRepository.
func NewMarksRepository(pool *pgxpool.Pool) *MarksRepository {
	return &MarksRepository{pool: pool}
}

// SaveSheet upserts a batch of marks inside one transaction. Values are
// already normalized by the caller; anything that parses as a number is
// stored as a numeric score, the rest as a text flag.
func (r *MarksRepository) SaveSheet(ctx context.Context, marks []model.Mark) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, mk := range marks {
		var markValue *float64
		var markText *string
		if v, err := strconv.ParseFloat(mk.Value, 64); err == nil {
			markValue = &v
		} else {
			s := mk.Value
			markText = &s
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO review_marks (group_id, review_number, roll_no, criteria_id, mark_value, mark_text)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (group_id, review_number, roll_no, criteria_id)
			 DO UPDATE SET mark_value = EXCLUDED.mark_value,
			               mark_text  = EXCLUDED.mark_text,
			               updated_at = CURRENT_TIMESTAMP`,
			mk.GroupID, mk.ReviewNumber, mk.RollNo, mk.CriteriaID, markValue, markText,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// GetSheet retrieves a group's stored sheet for one review: cell values
// keyed by criteria ID then roll number, plus totals from the view.
func (r *MarksRepository) GetSheet(ctx context.Context, groupID string, reviewNumber int) (*model.MarksSheet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT roll_no, criteria_id, mark_value, mark_text
		 FROM review_marks
		 WHERE group_id = $1 AND review_number = $2`, groupID, reviewNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheet := &model.MarksSheet{
		GroupID:      groupID,
		ReviewNumber: reviewNumber,
		Marks:        make(map[string]map[string]string),
		Totals:       make(map[string]string),
	}
	for rows.Next() {
		var rollNo, criteriaID string
		var markValue *float64
		var markText *string
		if err := rows.Scan(&rollNo, &criteriaID, &markValue, &markText); err != nil {
			return nil, err
		}
		var value string
		switch {
		case markValue != nil:
			value = strconv.FormatFloat(*markValue, 'f', -1, 64)
		case markText != nil:
			value = *markText
		}
		if value == "" {
			continue
		}
		if sheet.Marks[criteriaID] == nil {
			sheet.Marks[criteriaID] = make(map[string]string)
		}
		sheet.Marks[criteriaID][rollNo] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalRows, err := r.pool.Query(ctx,
		`SELECT roll_no, total FROM review_marks_totals
		 WHERE group_id = $1 AND review_number = $2`, groupID, reviewNumber)
	if err != nil {
		return nil, err
	}
	defer totalRows.Close()

	for totalRows.Next() {
		var rollNo string
		var total float64
		if err := totalRows.Scan(&rollNo, &total); err != nil {
			return nil, err
		}
		sheet.Totals[rollNo] = strconv.FormatFloat(total, 'f', 1, 64)
	}
	return sheet, totalRows.Err()
}

// TotalsByGroup retrieves every stored per-review total for a group, used to
// assemble the final sheet.
func (r *MarksRepository) TotalsByGroup(ctx context.Context, groupID string) ([]model.StudentTotal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, review_number, roll_no, total
		 FROM review_marks_totals
		 WHERE group_id = $1
		 ORDER BY roll_no, review_number`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []model.StudentTotal
	for rows.Next() {
		var t model.StudentTotal
		if err := rows.Scan(&t.GroupID, &t.ReviewNumber, &t.RollNo, &t.Total); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// AbsentRolls retrieves the roll numbers flagged absent for each review of a
// group. The final sheet shows "Absent" for these instead of a zero total.
func (r *MarksRepository) AbsentRolls(ctx context.Context, groupID string) (map[int]map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.review_number, a.roll_no
		 FROM review_attendance a
		 JOIN members m ON m.roll_no = a.roll_no
		 WHERE m.group_id = $1 AND NOT a.present`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	absent := make(map[int]map[string]bool)
	for rows.Next() {
		var reviewNumber int
		var rollNo string
		if err := rows.Scan(&reviewNumber, &rollNo); err != nil {
			return nil, err
		}
		if absent[reviewNumber] == nil {
			absent[reviewNumber] = make(map[string]bool)
		}
		absent[reviewNumber][rollNo] = true
	}
	return absent, rows.Err()
}
