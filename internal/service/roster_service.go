package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Roster import errors.
var (
	ErrRosterEmpty      = errors.New("roster sheet has no data rows")
	ErrRosterBadHeader  = errors.New("roster sheet is missing required columns")
	ErrRosterBadRow     = errors.New("roster sheet contains an invalid row")
)

// rosterColumns are the required headers, matched after normalization
// (trimmed, lower-cased, spaces collapsed to underscores).
var rosterColumns = []string{"group_id", "roll_no", "name", "project_title"}

// optional columns recognized when present.
var rosterOptional = []string{"domain", "guide_name"}

// RosterService imports and exports group rosters as Excel workbooks. The
// uploaded sheet is authoritative: importing replaces each listed group's
// members wholesale.
type RosterService struct {
	cfg      *config.Config
	projects *repository.ProjectRepository
	members  *repository.MemberRepository
	logger   zerolog.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(cfg *config.Config, projects *repository.ProjectRepository, members *repository.MemberRepository) *RosterService {
	return &RosterService{
		cfg:      cfg,
		projects: projects,
		members:  members,
		logger:   log.With().Str("component", "roster_service").Logger(),
	}
}

// ImportResult summarizes one roster upload.
type ImportResult struct {
	Groups  int `json:"groups"`
	Members int `json:"members"`
}

// Import reads an xlsx roster and replaces the listed groups' projects and
// members. Group IDs are upper-cased and stripped of stray spaces so hand
// edited sheets land on the same keys.
func (s *RosterService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrRosterEmpty
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	type groupData struct {
		project model.Project
		members []model.Member
	}
	groups := make(map[string]*groupData)
	order := []string{}

	for i, row := range rows[1:] {
		groupID := normalizeGroupID(cellAt(row, cols["group_id"]))
		rollNo := strings.TrimSpace(cellAt(row, cols["roll_no"]))
		name := strings.TrimSpace(cellAt(row, cols["name"]))
		title := strings.TrimSpace(cellAt(row, cols["project_title"]))
		if groupID == "" && rollNo == "" && name == "" {
			continue // blank padding row
		}
		if !review.ValidGroupID(groupID) || !review.ValidRollNo(rollNo) || name == "" {
			return nil, fmt.Errorf("%w: row %d", ErrRosterBadRow, i+2)
		}

		g, ok := groups[groupID]
		if !ok {
			g = &groupData{project: model.Project{GroupID: groupID, Title: title}}
			if c, found := cols["domain"]; found {
				g.project.Domain = strings.TrimSpace(cellAt(row, c))
			}
			if c, found := cols["guide_name"]; found {
				g.project.GuideName = strings.TrimSpace(cellAt(row, c))
			}
			groups[groupID] = g
			order = append(order, groupID)
		}
		g.members = append(g.members, model.Member{RollNo: rollNo, Name: name, GroupID: groupID})
	}
	if len(groups) == 0 {
		return nil, ErrRosterEmpty
	}

	result := &ImportResult{}
	for _, groupID := range order {
		g := groups[groupID]
		if err := s.projects.Create(ctx, &g.project); err != nil {
			if !errors.Is(err, repository.ErrDuplicateGroup) {
				return nil, fmt.Errorf("create group %s: %w", groupID, err)
			}
			if err := s.projects.Update(ctx, &g.project); err != nil {
				return nil, fmt.Errorf("update group %s: %w", groupID, err)
			}
		}
		if err := s.members.ReplaceGroup(ctx, groupID, g.members); err != nil {
			return nil, fmt.Errorf("replace members of %s: %w", groupID, err)
		}
		result.Groups++
		result.Members += len(g.members)
	}

	s.logger.Info().Int("groups", result.Groups).Int("members", result.Members).Msg("roster imported")
	return result, nil
}

// Export writes the full roster as an xlsx workbook.
func (s *RosterService) Export(ctx context.Context, w io.Writer) error {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := append(append([]string{}, rosterColumns...), rosterOptional...)
	for c, h := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, p := range projects {
		members, err := s.members.ListByGroup(ctx, p.GroupID)
		if err != nil {
			return fmt.Errorf("load members of %s: %w", p.GroupID, err)
		}
		for _, m := range members {
			values := []interface{}{p.GroupID, m.RollNo, m.Name, p.Title, p.Domain, p.GuideName}
			for c, v := range values {
				cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
				f.SetCellValue(sheet, cell, v)
			}
			rowIdx++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// mapHeader resolves required and optional columns from the header row.
func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	for _, required := range rosterColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrRosterBadHeader, required)
		}
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func normalizeGroupID(id string) string {
	return strings.ToUpper(strings.Join(strings.Fields(id), ""))
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
