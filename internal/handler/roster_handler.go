package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/gin-gonic/gin"
)

// RosterHandler handles Excel roster import and export (admin only).
type RosterHandler struct {
	cfg    *config.Config
	roster *service.RosterService
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(cfg *config.Config, roster *service.RosterService) *RosterHandler {
	return &RosterHandler{cfg: cfg, roster: roster}
}

// Import godoc
// POST /api/roster/import
// Accepts an xlsx upload and replaces the listed groups' rosters.
func (h *RosterHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if file.Size > h.cfg.RosterMaxBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".xlsx") {
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer src.Close()

	result, err := h.roster.Import(c.Request.Context(), src)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRosterEmpty),
			errors.Is(err, service.ErrRosterBadHeader),
			errors.Is(err, service.ErrRosterBadRow):
			response.FailMsg(c, http.StatusBadRequest, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// Export godoc
// GET /api/roster/export
// Streams the full roster as an xlsx workbook.
func (h *RosterHandler) Export(c *gin.Context) {
	fileName := "roster_" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.roster.Export(c.Request.Context(), c.Writer); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
}
