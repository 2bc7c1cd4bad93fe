package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Review sheet errors.
var (
	ErrUnknownReview   = errors.New("unknown review number")
	ErrUnknownGroup    = errors.New("unknown project group")
	ErrUnknownMember   = errors.New("student is not a member of this group")
	ErrUnknownQuestion = errors.New("unknown question code for this review")
	ErrBadResponse     = errors.New("response value must be a choice letter or a number")
	ErrNoSubmission    = errors.New("no submission found")
)

// ReviewService implements the marks, attendance and questionnaire
// operations shared by every review. All submitted marks flow through a
// grid bound to the review's rubric, so clamping and absence locks apply
// server-side no matter what the client sent.
type ReviewService struct {
	projects  *repository.ProjectRepository
	members   *repository.MemberRepository
	marks     *repository.MarksRepository
	responses *repository.ResponseRepository
	rdb       *redis.Client
	logger    zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	projects *repository.ProjectRepository,
	members *repository.MemberRepository,
	marks *repository.MarksRepository,
	responses *repository.ResponseRepository,
	rdb *redis.Client,
) *ReviewService {
	return &ReviewService{
		projects:  projects,
		members:   members,
		marks:     marks,
		responses: responses,
		rdb:       rdb,
		logger:    log.With().Str("component", "review_service").Logger(),
	}
}

// Catalog returns the rubric definition for one review.
func (s *ReviewService) Catalog(reviewNumber int) (review.Milestone, error) {
	if !review.ValidNumber(reviewNumber) {
		return review.Milestone{}, ErrUnknownReview
	}
	return review.Get(reviewNumber)
}

// Sheet loads a group's stored marks for one review. Stored values and
// attendance locks are replayed through a fresh grid, so clients always
// receive normalized cells and recomputed totals.
func (s *ReviewService) Sheet(ctx context.Context, groupID string, reviewNumber int) (*model.MarksSheet, []model.MemberAttendance, error) {
	g, members, err := s.buildGrid(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, nil, err
	}

	stored, err := s.marks.GetSheet(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("load sheet: %w", err)
	}
	token := g.BeginLoad()
	if err := g.ApplyLoad(token, stored.Marks); err != nil {
		return nil, nil, err
	}

	sheet := &model.MarksSheet{
		GroupID:      groupID,
		ReviewNumber: reviewNumber,
		Marks:        g.Marks(),
		Totals:       g.Totals(),
	}
	return sheet, members, nil
}

// SaveMarks validates and persists a submitted marks sheet. Each record is
// one student's flat row; keys that are not criteria of this review
// ("group_id", "roll_no", a stale "total", anything unknown) are skipped.
// Posted values for absent students count as explicit overrides; everything
// else is clamped against the rubric before it reaches the database.
func (s *ReviewService) SaveMarks(ctx context.Context, reviewNumber int, req *model.SaveMarksRequest) (*model.MarksSheet, error) {
	groupID := ""
	for _, record := range req.Marks {
		if id := record["group_id"]; id != "" {
			groupID = id
			break
		}
	}

	g, _, err := s.buildGrid(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, err
	}
	m := g.Milestone()

	for _, record := range req.Marks {
		rollNo := record["roll_no"]
		if rollNo == "" {
			return nil, ErrUnknownMember
		}
		for criteriaID, raw := range record {
			if _, ok := m.Criterion(criteriaID); !ok {
				continue
			}
			if err := g.Override(criteriaID, rollNo); err != nil {
				if errors.Is(err, review.ErrUnknownRoll) {
					return nil, ErrUnknownMember
				}
				return nil, err
			}
			if err := g.SetCell(criteriaID, rollNo, raw); err != nil {
				return nil, err
			}
		}
	}

	var batch []model.Mark
	for criteriaID, byRoll := range g.Marks() {
		for rollNo, value := range byRoll {
			batch = append(batch, model.Mark{
				GroupID:      groupID,
				ReviewNumber: reviewNumber,
				RollNo:       rollNo,
				CriteriaID:   criteriaID,
				Value:        value,
			})
		}
	}
	if err := s.marks.SaveSheet(ctx, batch); err != nil {
		return nil, fmt.Errorf("save sheet: %w", err)
	}

	s.logger.Info().
		Str("group_id", groupID).
		Int("review", reviewNumber).
		Int("cells", len(batch)).
		Msg("marks sheet saved")

	return &model.MarksSheet{
		GroupID:      groupID,
		ReviewNumber: reviewNumber,
		Marks:        g.Marks(),
		Totals:       g.Totals(),
	}, nil
}

// SaveAttendance updates presence flags for a group and broadcasts each
// change to live dashboard subscribers via Redis.
func (s *ReviewService) SaveAttendance(ctx context.Context, reviewNumber int, req *model.SaveAttendanceRequest, updatedBy string) error {
	if !review.ValidNumber(reviewNumber) {
		return ErrUnknownReview
	}
	for _, entry := range req.Attendance {
		if err := s.memberInGroup(ctx, req.GroupID, entry.RollNo); err != nil {
			return err
		}
	}

	for _, entry := range req.Attendance {
		if err := s.members.SetAttendance(ctx, entry.RollNo, reviewNumber, *entry.Present); err != nil {
			if repository.IsNotFound(err) {
				return ErrUnknownMember
			}
			return fmt.Errorf("set attendance: %w", err)
		}

		event := model.AttendanceEvent{
			GroupID:      req.GroupID,
			ReviewNumber: reviewNumber,
			RollNo:       entry.RollNo,
			Present:      *entry.Present,
			UpdatedBy:    updatedBy,
			UpdatedAt:    time.Now(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := s.rdb.Publish(ctx, config.CacheKey.AttendanceChannel(), payload).Err(); err != nil {
			// Broadcast failure must not undo the saved flag.
			s.logger.Warn().Err(err).Msg("attendance broadcast failed")
		}
	}
	return nil
}

// Members lists a group's students with their presence flag for one review.
func (s *ReviewService) Members(ctx context.Context, groupID string, reviewNumber int) ([]model.MemberEntry, error) {
	if !review.ValidNumber(reviewNumber) {
		return nil, ErrUnknownReview
	}
	if !review.ValidGroupID(groupID) {
		return nil, ErrUnknownGroup
	}
	members, err := s.members.ListWithAttendance(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		if err := s.groupExists(ctx, groupID); err != nil {
			return nil, err
		}
	}
	entries := make([]model.MemberEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, model.MemberEntry{
			RollNo:     m.RollNo,
			Name:       m.Name,
			Attendance: m.Present,
		})
	}
	return entries, nil
}

// AttendanceSummary aggregates presence counts for one review.
func (s *ReviewService) AttendanceSummary(ctx context.Context, reviewNumber int) (*model.AttendanceSummary, error) {
	if !review.ValidNumber(reviewNumber) {
		return nil, ErrUnknownReview
	}
	return s.members.AttendanceSummary(ctx, reviewNumber)
}

// SaveResponses validates questionnaire answers against the review's
// question bank and upserts them, reporting "created" or "updated".
func (s *ReviewService) SaveResponses(ctx context.Context, reviewNumber int, req *model.SaveResponsesRequest) (*model.SaveResponsesResult, error) {
	m, err := s.Catalog(reviewNumber)
	if err != nil {
		return nil, err
	}
	if err := s.groupExists(ctx, req.GroupID); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(m.Questions))
	for _, q := range m.Questions {
		known[q.Code] = true
	}
	responses := make(map[string]string, len(req.Responses))
	for _, qr := range req.Responses {
		if !known[qr.QuestionCode] {
			return nil, ErrUnknownQuestion
		}
		if !review.ValidResponseValue(qr.ResponseValue) {
			return nil, ErrBadResponse
		}
		responses[qr.QuestionCode] = qr.ResponseValue
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	res, err := s.responses.Upsert(ctx, &model.ResponseSheet{
		GroupID:        req.GroupID,
		ReviewNumber:   reviewNumber,
		SubmissionDate: date,
		Comments:       req.Comments,
		Responses:      responses,
	})
	if err != nil {
		return nil, fmt.Errorf("save responses: %w", err)
	}
	return res, nil
}

// Responses loads a group's stored questionnaire for one review. A group
// that has not submitted yet yields ErrNoSubmission; the page treats the
// resulting 404 as a blank form.
func (s *ReviewService) Responses(ctx context.Context, groupID string, reviewNumber int) (*model.ResponseSheet, error) {
	if !review.ValidNumber(reviewNumber) {
		return nil, ErrUnknownReview
	}
	if err := s.groupExists(ctx, groupID); err != nil {
		return nil, err
	}
	sheet, err := s.responses.Get(ctx, groupID, reviewNumber)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoSubmission
		}
		return nil, fmt.Errorf("load responses: %w", err)
	}
	return sheet, nil
}

// buildGrid loads a group's members with attendance and binds them to the
// review's rubric.
func (s *ReviewService) buildGrid(ctx context.Context, groupID string, reviewNumber int) (*review.Grid, []model.MemberAttendance, error) {
	m, err := s.Catalog(reviewNumber)
	if err != nil {
		return nil, nil, err
	}
	if !review.ValidGroupID(groupID) {
		return nil, nil, ErrUnknownGroup
	}

	members, err := s.members.ListWithAttendance(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		if err := s.groupExists(ctx, groupID); err != nil {
			return nil, nil, err
		}
	}

	students := make([]review.Student, 0, len(members))
	for _, mem := range members {
		students = append(students, review.Student{
			RollNo:  mem.RollNo,
			Name:    mem.Name,
			Present: mem.Present,
		})
	}
	return review.NewGrid(m, students), members, nil
}

func (s *ReviewService) groupExists(ctx context.Context, groupID string) error {
	if !review.ValidGroupID(groupID) {
		return ErrUnknownGroup
	}
	if _, err := s.projects.GetByGroupID(ctx, groupID); err != nil {
		if repository.IsNotFound(err) {
			return ErrUnknownGroup
		}
		return fmt.Errorf("load group: %w", err)
	}
	return nil
}

func (s *ReviewService) memberInGroup(ctx context.Context, groupID, rollNo string) error {
	members, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load members: %w", err)
	}
	for _, m := range members {
		if m.RollNo == rollNo {
			return nil
		}
	}
	if err := s.groupExists(ctx, groupID); err != nil {
		return err
	}
	return ErrUnknownMember
}
