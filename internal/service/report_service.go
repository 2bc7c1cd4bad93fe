package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/signintech/gopdf"
)

// ErrNoReport means no PDF has been generated yet for the group and review.
var ErrNoReport = errors.New("no generated report found")

// Page layout constants (A4, points).
const (
	pageMarginX  = 40.0
	pageMarginY  = 40.0
	pageWidth    = 595.28
	rowHeight    = 22.0
	labelColW    = 230.0
	pageBreakAt  = 780.0
	fontSizeBody = 10.0
	fontSizeHead = 14.0
)

// ReportService renders review sheets and final sheets as PDF files and
// logs every generated file so the janitor can prune them later.
type ReportService struct {
	cfg        *config.Config
	reviews    *ReviewService
	finalSheet *FinalSheetService
	projects   *repository.ProjectRepository
	members    *repository.MemberRepository
	reports    *repository.ReportRepository
	logger     zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	cfg *config.Config,
	reviews *ReviewService,
	finalSheet *FinalSheetService,
	projects *repository.ProjectRepository,
	members *repository.MemberRepository,
	reports *repository.ReportRepository,
) *ReportService {
	return &ReportService{
		cfg:        cfg,
		reviews:    reviews,
		finalSheet: finalSheet,
		projects:   projects,
		members:    members,
		reports:    reports,
		logger:     log.With().Str("component", "report_service").Logger(),
	}
}

// GenerateReview renders one group's marks sheet for a review. Review
// number 5 renders the consolidated final sheet instead.
func (s *ReportService) GenerateReview(ctx context.Context, groupID string, reviewNumber int, generatedBy string) (*model.GenerateReportResponse, error) {
	if reviewNumber == review.FinalSheetNumber {
		return s.generateFinal(ctx, groupID, generatedBy)
	}

	sheet, members, err := s.reviews.Sheet(ctx, groupID, reviewNumber)
	if err != nil {
		return nil, err
	}
	responses, err := s.reviews.Responses(ctx, groupID, reviewNumber)
	if err != nil {
		if !errors.Is(err, ErrNoSubmission) {
			return nil, err
		}
		// No questionnaire yet; the PDF renders without the checklist.
		responses = &model.ResponseSheet{Responses: map[string]string{}}
	}
	m, err := review.Get(reviewNumber)
	if err != nil {
		return nil, ErrUnknownReview
	}
	project, err := s.projects.GetByGroupID(ctx, groupID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownGroup
		}
		return nil, err
	}

	pdf, err := s.newPDF()
	if err != nil {
		return nil, err
	}

	s.heading(pdf, m.ChecklistTitle)
	s.keyValue(pdf, "Group", fmt.Sprintf("%s - %s", project.GroupID, project.Title))
	s.keyValue(pdf, "Guide", project.GuideName)
	s.keyValue(pdf, "Generated", time.Now().Format("02 Jan 2006 15:04"))
	pdf.Br(rowHeight / 2)

	s.marksTable(pdf, m, members, sheet)
	pdf.Br(rowHeight)

	if len(responses.Responses) > 0 {
		s.subHeading(pdf, "Checklist Responses")
		for _, q := range m.Questions {
			answer, ok := responses.Responses[q.Code]
			if !ok {
				continue
			}
			s.checkBreak(pdf)
			s.keyValue(pdf, q.Text, answer)
		}
		pdf.Br(rowHeight / 2)
	}
	if responses.Comments != "" {
		s.subHeading(pdf, "Comments")
		s.paragraph(pdf, responses.Comments)
		pdf.Br(rowHeight / 2)
	}

	s.subHeading(pdf, "Deliverables")
	for i, d := range m.Deliverables {
		s.checkBreak(pdf)
		s.paragraph(pdf, fmt.Sprintf("%d. %s", i+1, d))
	}
	s.signatures(pdf)

	fileName := s.fileName(groupID, reviewNumber)
	if err := s.write(pdf, fileName); err != nil {
		return nil, err
	}
	if err := s.logGenerated(ctx, groupID, reviewNumber, fileName, generatedBy); err != nil {
		return nil, err
	}
	return &model.GenerateReportResponse{Success: true, FileName: fileName, DownloadURL: "/reports/" + fileName}, nil
}

// generateFinal renders the consolidated summary sheet.
func (s *ReportService) generateFinal(ctx context.Context, groupID, generatedBy string) (*model.GenerateReportResponse, error) {
	sheet, err := s.finalSheet.Build(ctx, groupID)
	if err != nil {
		return nil, err
	}
	overall, err := s.finalSheet.Comments(ctx, groupID)
	if err != nil {
		return nil, err
	}

	pdf, err := s.newPDF()
	if err != nil {
		return nil, err
	}

	s.heading(pdf, "PROJECT REVIEW - FINAL SHEET")
	s.keyValue(pdf, "Group", fmt.Sprintf("%s - %s", sheet.GroupID, sheet.Title))
	s.keyValue(pdf, "Guide", sheet.GuideName)
	s.keyValue(pdf, "Generated", sheet.GeneratedAt.Format("02 Jan 2006 15:04"))
	pdf.Br(rowHeight / 2)

	contentW := pageWidth - 2*pageMarginX
	nameW := 180.0
	scoreW := (contentW - nameW) / float64(review.LastReview-review.FirstReview+2)

	headers := []string{"Student"}
	for n := review.FirstReview; n <= review.LastReview; n++ {
		headers = append(headers, "Review "+review.Roman(n))
	}
	headers = append(headers, "Total")

	pdf.SetX(pageMarginX)
	for i, h := range headers {
		w := scoreW
		if i == 0 {
			w = nameW
		}
		s.cell(pdf, w, h, true)
	}
	pdf.Br(rowHeight)

	for _, row := range sheet.Rows {
		s.checkBreak(pdf)
		pdf.SetX(pageMarginX)
		s.cell(pdf, nameW, fmt.Sprintf("%s  %s", row.RollNo, row.Name), false)
		for _, score := range row.Scores {
			if score.Absent {
				s.cell(pdf, scoreW, "Absent", false)
			} else {
				s.cell(pdf, scoreW, review.FormatTotal(score.Total), false)
			}
		}
		s.cell(pdf, scoreW, review.FormatTotal(row.GrandTotal), true)
		pdf.Br(rowHeight)
	}

	if overall.Comments != "" {
		pdf.Br(rowHeight / 2)
		s.subHeading(pdf, "Overall Comments")
		s.paragraph(pdf, overall.Comments)
	}
	s.signatures(pdf)

	fileName := s.fileName(groupID, review.FinalSheetNumber)
	if err := s.write(pdf, fileName); err != nil {
		return nil, err
	}
	if err := s.logGenerated(ctx, groupID, review.FinalSheetNumber, fileName, generatedBy); err != nil {
		return nil, err
	}
	return &model.GenerateReportResponse{Success: true, FileName: fileName, DownloadURL: "/reports/" + fileName}, nil
}

// GenerateAttendance renders the all-groups attendance dashboard: every
// group's students with a present/absent flag per review.
func (s *ReportService) GenerateAttendance(ctx context.Context, generatedBy string) (*model.GenerateReportResponse, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := s.newPDF()
	if err != nil {
		return nil, err
	}
	s.heading(pdf, "PROJECT REVIEW - ATTENDANCE SUMMARY")

	contentW := pageWidth - 2*pageMarginX
	nameW := 220.0
	flagW := (contentW - nameW) / float64(review.LastReview-review.FirstReview+1)

	for _, p := range projects {
		members, err := s.members.ListByGroup(ctx, p.GroupID)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}
		absent, err := s.marksAbsentRolls(ctx, p.GroupID)
		if err != nil {
			return nil, err
		}

		s.checkBreak(pdf)
		s.subHeading(pdf, fmt.Sprintf("%s - %s", p.GroupID, p.Title))

		pdf.SetX(pageMarginX)
		s.cell(pdf, nameW, "Student", true)
		for n := review.FirstReview; n <= review.LastReview; n++ {
			s.cell(pdf, flagW, "Review "+review.Roman(n), true)
		}
		pdf.Br(rowHeight)

		for _, mem := range members {
			s.checkBreak(pdf)
			pdf.SetX(pageMarginX)
			s.cell(pdf, nameW, fmt.Sprintf("%s  %s", mem.RollNo, mem.Name), false)
			for n := review.FirstReview; n <= review.LastReview; n++ {
				flag := "P"
				if absent[n][mem.RollNo] {
					flag = "A"
				}
				s.cell(pdf, flagW, flag, false)
			}
			pdf.Br(rowHeight)
		}
		pdf.Br(rowHeight / 2)
	}

	fileName := fmt.Sprintf("attendance_%s.pdf", time.Now().Format("20060102_150405"))
	if err := s.write(pdf, fileName); err != nil {
		return nil, err
	}
	if err := s.logGenerated(ctx, "ALL", review.FirstReview, fileName, generatedBy); err != nil {
		return nil, err
	}
	return &model.GenerateReportResponse{Success: true, FileName: fileName, DownloadURL: "/reports/" + fileName}, nil
}

func (s *ReportService) marksAbsentRolls(ctx context.Context, groupID string) (map[int]map[string]bool, error) {
	return s.reviews.marks.AbsentRolls(ctx, groupID)
}

// ReportPath returns the on-disk path of a generated file name.
func (s *ReportService) ReportPath(fileName string) string {
	return filepath.Join(s.cfg.ReportDir, filepath.Base(fileName))
}

// Recent lists the newest generation log entries for the admin report view.
func (s *ReportService) Recent(ctx context.Context, limit int) ([]model.ReportLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.reports.ListRecent(ctx, limit)
}

// Resolve maps a previously issued report file name back to its path on
// disk, refusing names that were never generated for this review.
func (s *ReportService) Resolve(reviewNumber int, fileName string) (string, error) {
	base := filepath.Base(fileName)
	prefix := fmt.Sprintf("review%d_", reviewNumber)
	if base != fileName || !strings.HasPrefix(base, prefix) || !strings.HasSuffix(base, ".pdf") {
		return "", ErrNoReport
	}
	path := filepath.Join(s.cfg.ReportDir, base)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNoReport
	}
	return path, nil
}

// Latest resolves the newest generated PDF for a group and review to an
// absolute path for download.
func (s *ReportService) Latest(ctx context.Context, groupID string, reviewNumber int) (string, error) {
	l, err := s.reports.LatestForGroup(ctx, groupID, reviewNumber)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", ErrNoReport
		}
		return "", err
	}
	path := filepath.Join(s.cfg.ReportDir, l.FileName)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNoReport
	}
	return path, nil
}

func (s *ReportService) marksTable(pdf *gopdf.GoPdf, m review.Milestone, members []model.MemberAttendance, sheet *model.MarksSheet) {
	contentW := pageWidth - 2*pageMarginX
	colW := (contentW - labelColW) / float64(maxInt(len(members), 1))

	pdf.SetX(pageMarginX)
	s.cell(pdf, labelColW, "Criteria", true)
	for _, mem := range members {
		label := mem.RollNo
		if !mem.Present {
			label += " (A)"
		}
		s.cell(pdf, colW, label, true)
	}
	pdf.Br(rowHeight)

	for _, crit := range m.Criteria {
		s.checkBreak(pdf)
		pdf.SetX(pageMarginX)
		label := crit.Label
		if crit.Kind == review.KindNumeric {
			label = fmt.Sprintf("%s (%g)", crit.Label, crit.Max)
		}
		s.cell(pdf, labelColW, label, false)
		for _, mem := range members {
			s.cell(pdf, colW, sheet.Marks[crit.ID][mem.RollNo], false)
		}
		pdf.Br(rowHeight)
	}

	pdf.SetX(pageMarginX)
	s.cell(pdf, labelColW, fmt.Sprintf("Total (out of %g)", m.TotalMax()), true)
	for _, mem := range members {
		s.cell(pdf, colW, sheet.Totals[mem.RollNo], true)
	}
	pdf.Br(rowHeight)
}

func (s *ReportService) newPDF() (*gopdf.GoPdf, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()
	if err := pdf.AddTTFFont("sans", s.cfg.ReportFontPath); err != nil {
		return nil, fmt.Errorf("load report font %s: %w", s.cfg.ReportFontPath, err)
	}
	if err := pdf.SetFont("sans", "", fontSizeBody); err != nil {
		return nil, err
	}
	pdf.SetXY(pageMarginX, pageMarginY)
	return pdf, nil
}

func (s *ReportService) heading(pdf *gopdf.GoPdf, title string) {
	pdf.SetFont("sans", "", fontSizeHead)
	pdf.SetX(pageMarginX)
	pdf.CellWithOption(&gopdf.Rect{W: pageWidth - 2*pageMarginX, H: rowHeight}, title,
		gopdf.CellOption{Align: gopdf.Center | gopdf.Middle})
	pdf.Br(rowHeight * 1.5)
	pdf.SetFont("sans", "", fontSizeBody)
}

func (s *ReportService) subHeading(pdf *gopdf.GoPdf, title string) {
	pdf.SetFont("sans", "", fontSizeBody+2)
	pdf.SetX(pageMarginX)
	pdf.Cell(nil, title)
	pdf.Br(rowHeight)
	pdf.SetFont("sans", "", fontSizeBody)
}

func (s *ReportService) keyValue(pdf *gopdf.GoPdf, key, value string) {
	pdf.SetX(pageMarginX)
	pdf.Cell(nil, key+": "+value)
	pdf.Br(rowHeight * 0.8)
}

func (s *ReportService) paragraph(pdf *gopdf.GoPdf, text string) {
	pdf.SetX(pageMarginX)
	pdf.Cell(nil, text)
	pdf.Br(rowHeight * 0.8)
}

func (s *ReportService) cell(pdf *gopdf.GoPdf, w float64, text string, emphasized bool) {
	align := gopdf.Left | gopdf.Middle
	if emphasized {
		align = gopdf.Center | gopdf.Middle
	}
	pdf.CellWithOption(&gopdf.Rect{W: w, H: rowHeight}, " "+text,
		gopdf.CellOption{Align: align, Border: gopdf.AllBorders})
}

func (s *ReportService) signatures(pdf *gopdf.GoPdf) {
	pdf.Br(rowHeight * 2)
	s.checkBreak(pdf)
	pdf.SetX(pageMarginX)
	half := (pageWidth - 2*pageMarginX) / 2
	pdf.CellWithOption(&gopdf.Rect{W: half, H: rowHeight}, "Signature of Guide",
		gopdf.CellOption{Align: gopdf.Left | gopdf.Middle})
	pdf.CellWithOption(&gopdf.Rect{W: half, H: rowHeight}, "Signature of Panel Member",
		gopdf.CellOption{Align: gopdf.Right | gopdf.Middle})
	pdf.Br(rowHeight)
}

func (s *ReportService) checkBreak(pdf *gopdf.GoPdf) {
	if pdf.GetY() > pageBreakAt {
		pdf.AddPage()
		pdf.SetXY(pageMarginX, pageMarginY)
	}
}

func (s *ReportService) fileName(groupID string, reviewNumber int) string {
	safe := strings.ToLower(strings.ReplaceAll(groupID, " ", "_"))
	return fmt.Sprintf("review%d_%s_%s.pdf", reviewNumber, safe, time.Now().Format("20060102_150405"))
}

func (s *ReportService) write(pdf *gopdf.GoPdf, fileName string) error {
	if err := os.MkdirAll(s.cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(s.cfg.ReportDir, fileName)
	if err := pdf.WritePdf(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (s *ReportService) logGenerated(ctx context.Context, groupID string, reviewNumber int, fileName, generatedBy string) error {
	if err := s.reports.Insert(ctx, &model.ReportLog{
		GroupID:      groupID,
		ReviewNumber: reviewNumber,
		FileName:     fileName,
		GeneratedBy:  generatedBy,
	}); err != nil {
		return fmt.Errorf("log report: %w", err)
	}
	s.logger.Info().
		Str("group_id", groupID).
		Int("review", reviewNumber).
		Str("file", fileName).
		Msg("report generated")
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
