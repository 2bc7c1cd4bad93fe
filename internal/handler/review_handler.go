package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/campusworks/review-portal/internal/middleware"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles the marks, attendance and questionnaire endpoints.
// One handler serves every review: each route group binds the handler
// methods to its own review number, so the five reviews stay a single code
// path.
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Config godoc
// GET /api/review{N}/config
// Returns the rubric definition for the review.
func (h *ReviewHandler) Config(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := h.reviews.Catalog(n)
		if err != nil {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidReview)
			return
		}
		c.JSON(http.StatusOK, m)
	}
}

// ConfigByParam godoc
// GET /api/reviews/:review_number/config
// Same rubric lookup with the review number as a path parameter.
func (h *ReviewHandler) ConfigByParam(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("review_number"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidReview)
		return
	}
	m, err := h.reviews.Catalog(n)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrInvalidReview)
		return
	}
	c.JSON(http.StatusOK, m)
}

// markRecords flattens a sheet into one wire row per student: roll_no plus
// a key per criteria and the computed total, ordered by roll number.
func markRecords(sheet *model.MarksSheet, m review.Milestone) []model.MarkRecord {
	rolls := make([]string, 0, len(sheet.Totals))
	for rollNo := range sheet.Totals {
		rolls = append(rolls, rollNo)
	}
	sort.Strings(rolls)

	records := make([]model.MarkRecord, 0, len(rolls))
	for _, rollNo := range rolls {
		record := model.MarkRecord{
			"group_id": sheet.GroupID,
			"roll_no":  rollNo,
		}
		for _, criterion := range m.Criteria {
			record[criterion.ID] = sheet.Marks[criterion.ID][rollNo]
		}
		record["total"] = sheet.Totals[rollNo]
		records = append(records, record)
	}
	return records
}

// Sheet godoc
// GET /api/review{N}/marks?group_id=...
// Returns per-student mark records with recomputed totals.
func (h *ReviewHandler) Sheet(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Query("group_id")
		if groupID == "" {
			response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
			return
		}

		sheet, _, err := h.reviews.Sheet(c.Request.Context(), groupID, n)
		if err != nil {
			h.failDomain(c, err)
			return
		}
		m, _ := h.reviews.Catalog(n)
		c.JSON(http.StatusOK, gin.H{"marks": markRecords(sheet, m)})
	}
}

// SaveMarks godoc
// POST /api/review{N}/marks
// Validates, clamps and persists a submitted marks sheet, returning the
// normalized records so the page converges on the server's values.
func (h *ReviewHandler) SaveMarks(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.SaveMarksRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		sheet, err := h.reviews.SaveMarks(c.Request.Context(), n, &req)
		if err != nil {
			h.failDomain(c, err)
			return
		}
		m, _ := h.reviews.Catalog(n)
		c.JSON(http.StatusOK, gin.H{"success": true, "marks": markRecords(sheet, m)})
	}
}

// Members godoc
// GET /api/review{N}/members?group_id=...
// Lists a group's students with their presence flag for this review.
func (h *ReviewHandler) Members(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Query("group_id")
		if groupID == "" {
			response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
			return
		}
		members, err := h.reviews.Members(c.Request.Context(), groupID, n)
		if err != nil {
			h.failDomain(c, err)
			return
		}
		c.JSON(http.StatusOK, members)
	}
}

// MembersByQuery godoc
// GET /api/members?group_id=...&review_number=...
// Same listing with the review number as a query parameter.
func (h *ReviewHandler) MembersByQuery(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}
	n, err := strconv.Atoi(c.Query("review_number"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidReview)
		return
	}
	members, err := h.reviews.Members(c.Request.Context(), groupID, n)
	if err != nil {
		h.failDomain(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Attendance godoc
// POST /api/review{N}/attendance
// Updates presence flags for a group and broadcasts each change.
func (h *ReviewHandler) Attendance(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.SaveAttendanceRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		updatedBy := ""
		if claims := middleware.GetClaims(c); claims != nil {
			updatedBy = claims.Email
		}
		if err := h.reviews.SaveAttendance(c.Request.Context(), n, &req, updatedBy); err != nil {
			h.failDomain(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Attendance updated"})
	}
}

// AttendanceSummary godoc
// GET /api/review{N}/attendance/summary
// Aggregated presence counts for the live dashboard.
func (h *ReviewHandler) AttendanceSummary(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := h.reviews.AttendanceSummary(c.Request.Context(), n)
		if err != nil {
			h.failDomain(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// Responses godoc
// GET /api/review{N}/responses?group_id=...
// Returns the stored questionnaire submission, or 404 when the group has
// not submitted yet. The page treats the 404 as a blank form.
func (h *ReviewHandler) Responses(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID := c.Query("group_id")
		if groupID == "" {
			response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
			return
		}

		sheet, err := h.reviews.Responses(c.Request.Context(), groupID, n)
		if err != nil {
			if errors.Is(err, service.ErrNoSubmission) {
				c.JSON(http.StatusNotFound, gin.H{"message": "No submission found"})
				return
			}
			h.failDomain(c, err)
			return
		}
		c.JSON(http.StatusOK, sheet)
	}
}

// SaveResponses godoc
// POST /api/review{N}/responses
// Upserts a questionnaire submission, reporting "created" or "updated".
func (h *ReviewHandler) SaveResponses(n int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.SaveResponsesRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}

		result, err := h.reviews.SaveResponses(c.Request.Context(), n, &req)
		if err != nil {
			h.failDomain(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// failDomain maps review service errors onto wire errors.
func (h *ReviewHandler) failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownReview):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidReview)
	case errors.Is(err, service.ErrUnknownGroup):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUnknownMember),
		errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, service.ErrBadResponse),
		errors.Is(err, review.ErrUnknownCell),
		errors.Is(err, review.ErrUnknownRoll):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
