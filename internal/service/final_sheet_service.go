package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/review"
)

// FinalSheetService assembles the consolidated per-group summary across all
// reviews. A review where the student was flagged absent shows as "Absent"
// and contributes nothing to the grand total.
type FinalSheetService struct {
	projects *repository.ProjectRepository
	members  *repository.MemberRepository
	marks    *repository.MarksRepository
	comments *repository.FinalSheetRepository
}

// NewFinalSheetService creates a new FinalSheetService.
func NewFinalSheetService(
	projects *repository.ProjectRepository,
	members *repository.MemberRepository,
	marks *repository.MarksRepository,
	comments *repository.FinalSheetRepository,
) *FinalSheetService {
	return &FinalSheetService{projects: projects, members: members, marks: marks, comments: comments}
}

// Build assembles the final sheet for one group.
func (s *FinalSheetService) Build(ctx context.Context, groupID string) (*model.FinalSheet, error) {
	if !review.ValidGroupID(groupID) {
		return nil, ErrUnknownGroup
	}
	project, err := s.projects.GetByGroupID(ctx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownGroup
		}
		return nil, fmt.Errorf("load group: %w", err)
	}

	members, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	totals, err := s.marks.TotalsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}
	absent, err := s.marks.AbsentRolls(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	byStudent := make(map[string]map[int]float64, len(members))
	for _, t := range totals {
		if byStudent[t.RollNo] == nil {
			byStudent[t.RollNo] = make(map[int]float64)
		}
		byStudent[t.RollNo][t.ReviewNumber] = t.Total
	}

	sheet := &model.FinalSheet{
		GroupID:     groupID,
		Title:       project.Title,
		GuideName:   project.GuideName,
		GeneratedAt: time.Now(),
	}
	for _, mem := range members {
		row := model.FinalSheetRow{RollNo: mem.RollNo, Name: mem.Name}
		for n := review.FirstReview; n <= review.LastReview; n++ {
			score := model.ReviewScore{ReviewNumber: n}
			if absent[n][mem.RollNo] {
				score.Absent = true
			} else {
				score.Total = byStudent[mem.RollNo][n]
				row.GrandTotal += score.Total
			}
			row.Scores = append(row.Scores, score)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// Summary returns the final sheet in its page shape: the member list plus
// per-review totals keyed "review0".."review4" then roll number, with the
// literal "Absent" standing in for a missed review.
func (s *FinalSheetService) Summary(ctx context.Context, groupID string) (*model.FinalSheetSummary, error) {
	sheet, err := s.Build(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	marks := make(map[string]map[string]string, review.LastReview+1)
	for n := review.FirstReview; n <= review.LastReview; n++ {
		marks[fmt.Sprintf("review%d", n)] = make(map[string]string)
	}
	for _, row := range sheet.Rows {
		for _, score := range row.Scores {
			key := fmt.Sprintf("review%d", score.ReviewNumber)
			if score.Absent {
				marks[key][row.RollNo] = "Absent"
			} else {
				marks[key][row.RollNo] = review.FormatTotal(score.Total)
			}
		}
	}

	return &model.FinalSheetSummary{
		GroupID:     groupID,
		Members:     members,
		ReviewMarks: marks,
	}, nil
}

// Comments loads a group's overall final sheet remark.
func (s *FinalSheetService) Comments(ctx context.Context, groupID string) (*model.FinalComments, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.comments.GetComments(ctx, groupID)
}

// SaveComments upserts a group's overall final sheet remark.
func (s *FinalSheetService) SaveComments(ctx context.Context, req *model.SaveFinalCommentsRequest) error {
	if err := s.requireGroup(ctx, req.GroupID); err != nil {
		return err
	}
	return s.comments.SaveComments(ctx, req.GroupID, req.Comments)
}

func (s *FinalSheetService) requireGroup(ctx context.Context, groupID string) error {
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
