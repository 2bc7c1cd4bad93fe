package repository

import (
	"context"
	"errors"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateRollNo = errors.New("member with this roll number already exists")

// MemberRepository handles student member and attendance data access.
// Attendance is one row per (roll_no, review_number); a missing row means
// present, matching the default state of a fresh sheet.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// ListByGroup retrieves the members of one group ordered by roll number.
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID string) ([]model.Member, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT roll_no, name, group_id, created_at, updated_at
		 FROM members WHERE group_id = $1 ORDER BY roll_no`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.RollNo, &m.Name, &m.GroupID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ListWithAttendance retrieves a group's members joined with their presence
// flag for one review.
func (r *MemberRepository) ListWithAttendance(ctx context.Context, groupID string, reviewNumber int) ([]model.MemberAttendance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.roll_no, m.name, m.group_id, m.created_at, m.updated_at,
		        COALESCE(a.present, TRUE)
		 FROM members m
		 LEFT JOIN review_attendance a
		   ON a.roll_no = m.roll_no AND a.review_number = $2
		 WHERE m.group_id = $1
		 ORDER BY m.roll_no`, groupID, reviewNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.MemberAttendance
	for rows.Next() {
		var m model.MemberAttendance
		if err := rows.Scan(&m.RollNo, &m.Name, &m.GroupID, &m.CreatedAt, &m.UpdatedAt, &m.Present); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Create inserts a member into a group.
func (r *MemberRepository) Create(ctx context.Context, m *model.Member) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO members (roll_no, name, group_id)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		m.RollNo, m.Name, m.GroupID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateRollNo
		}
		return err
	}
	return nil
}

// ReplaceGroup swaps a group's member roster inside one transaction. Used by
// the roster import, where the uploaded sheet is authoritative.
func (r *MemberRepository) ReplaceGroup(ctx context.Context, groupID string, members []model.Member) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM members WHERE group_id = $1`, groupID); err != nil {
		return err
	}
	for i := range members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO members (roll_no, name, group_id) VALUES ($1, $2, $3)`,
			members[i].RollNo, members[i].Name, groupID,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrDuplicateRollNo
			}
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetAttendance upserts the presence flag for one student and review.
func (r *MemberRepository) SetAttendance(ctx context.Context, rollNo string, reviewNumber int, present bool) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO review_attendance (roll_no, review_number, present)
		 SELECT roll_no, $2, $3 FROM members WHERE roll_no = $1
		 ON CONFLICT (roll_no, review_number)
		 DO UPDATE SET present = EXCLUDED.present, updated_at = CURRENT_TIMESTAMP`,
		rollNo, reviewNumber, present,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AttendanceSummary counts present and absent students per review.
func (r *MemberRepository) AttendanceSummary(ctx context.Context, reviewNumber int) (*model.AttendanceSummary, error) {
	s := &model.AttendanceSummary{ReviewNumber: reviewNumber}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE COALESCE(a.present, TRUE)),
		        COUNT(*) FILTER (WHERE NOT COALESCE(a.present, TRUE))
		 FROM members m
		 LEFT JOIN review_attendance a
		   ON a.roll_no = m.roll_no AND a.review_number = $1`, reviewNumber,
	).Scan(&s.TotalMembers, &s.PresentCount, &s.AbsentCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a member by roll number.
func (r *MemberRepository) Delete(ctx context.Context, rollNo string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM members WHERE roll_no = $1`, rollNo)
	return err
}
