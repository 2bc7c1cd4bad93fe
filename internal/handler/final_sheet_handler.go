package handler

import (
	"errors"
	"net/http"

	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
)

// FinalSheetHandler handles the consolidated summary endpoints.
type FinalSheetHandler struct {
	finalSheet *service.FinalSheetService
}

// NewFinalSheetHandler creates a new FinalSheetHandler.
func NewFinalSheetHandler(finalSheet *service.FinalSheetService) *FinalSheetHandler {
	return &FinalSheetHandler{finalSheet: finalSheet}
}

// Summary godoc
// GET /api/final-sheet/summary?group_id=...
// Returns the group's members plus per-review totals; a missed review
// shows the literal "Absent".
func (h *FinalSheetHandler) Summary(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	summary, err := h.finalSheet.Summary(c.Request.Context(), groupID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetComments godoc
// GET /api/final-sheet/comments?group_id=...
func (h *FinalSheetHandler) GetComments(c *gin.Context) {
	groupID := c.Query("group_id")
	if groupID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	comments, err := h.finalSheet.Comments(c.Request.Context(), groupID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// SaveComments godoc
// POST /api/final-sheet/comments
func (h *FinalSheetHandler) SaveComments(c *gin.Context) {
	var req model.SaveFinalCommentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.finalSheet.SaveComments(c.Request.Context(), &req); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comments saved"})
}

func (h *FinalSheetHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnknownGroup) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
