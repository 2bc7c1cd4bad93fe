package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusworks/review-portal/internal/middleware"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles PDF generation and download endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Generate godoc
// POST /api/review{N}/generate-pdf
// Renders a group's sheet as a PDF and returns its download URL. Review
// number 5 renders the consolidated final sheet.
func (h *ReportHandler) Generate(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.GenerateReportRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		generatedBy := ""
		if claims := middleware.GetClaims(c); claims != nil {
			generatedBy = claims.Email
		}
		res, err := h.reports.GenerateReview(c.Request.Context(), req.GroupID, n, generatedBy)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// Download godoc
// GET /api/review{N}/download-pdf/:filename
// Streams a previously generated PDF by its issued file name.
func (h *ReportHandler) Download(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileName := c.Param("filename")
		path, err := h.reports.Resolve(n, fileName)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.FileAttachment(path, fileName)
	}
}

// DownloadLatest godoc
// GET /api/review{N}/download-pdf?group_id=...
// Streams the most recently generated PDF for the group.
func (h *ReportHandler) DownloadLatest(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Query("group_id")
		if groupID == "" {
			response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
			return
		}

		path, err := h.reports.Latest(c.Request.Context(), groupID, n)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.FileAttachment(path, groupID+".pdf")
	}
}

// List godoc
// GET /api/reports?limit=...
// Lists the newest generated reports across all groups (admin only).
func (h *ReportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.reports.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if logs == nil {
		logs = []model.ReportLog{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": logs})
}

// AttendanceSheet godoc
// GET /api/attendance/pdf
// Renders and streams the all-groups attendance summary.
func (h *ReportHandler) AttendanceSheet(c *gin.Context) {
	generatedBy := ""
	if claims := middleware.GetClaims(c); claims != nil {
		generatedBy = claims.Email
	}
	res, err := h.reports.GenerateAttendance(c.Request.Context(), generatedBy)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.FileAttachment(h.reports.ReportPath(res.FileName), res.FileName)
}

func (h *ReportHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownReview):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidReview)
	case errors.Is(err, service.ErrUnknownGroup):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNoReport):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
