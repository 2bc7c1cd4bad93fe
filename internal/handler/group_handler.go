package handler

import (
	"errors"
	"net/http"

	"github.com/campusworks/review-portal/internal/middleware"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/response"
	"github.com/campusworks/review-portal/internal/review"
	"github.com/campusworks/review-portal/internal/validator"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles project group, member and panel endpoints.
type GroupHandler struct {
	projects *repository.ProjectRepository
	members  *repository.MemberRepository
	panels   *repository.PanelRepository
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(
	projects *repository.ProjectRepository,
	members *repository.MemberRepository,
	panels *repository.PanelRepository,
) *GroupHandler {
	return &GroupHandler{projects: projects, members: members, panels: panels}
}

// ListGroups godoc
// GET /api/groups
// Lists project groups. Evaluators with a panel assignment only see their
// assigned groups; admins and unassigned evaluators see everything.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	claims := middleware.GetClaims(c)
	if claims != nil && claims.Role != model.RoleAdmin {
		assigned, err := h.panels.GroupIDsForUser(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		if len(assigned) > 0 {
			keep := make(map[string]bool, len(assigned))
			for _, id := range assigned {
				keep[id] = true
			}
			filtered := projects[:0]
			for _, p := range projects {
				if keep[p.GroupID] {
					filtered = append(filtered, p)
				}
			}
			projects = filtered
		}
	}

	c.JSON(http.StatusOK, gin.H{"groups": projects})
}

// GetGroup godoc
// GET /api/groups/:group_id
// Returns one group with its members.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID := c.Param("group_id")
	if !review.ValidGroupID(groupID) {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	project, err := h.projects.GetByGroupID(c.Request.Context(), groupID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	members, err := h.members.ListByGroup(c.Request.Context(), groupID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": project, "members": members})
}

// CreateGroup godoc
// POST /api/groups
// Registers a new project group (admin only).
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req model.CreateProjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !review.ValidGroupID(req.GroupID) {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	project := &model.Project{
		GroupID:   req.GroupID,
		Title:     req.Title,
		Domain:    req.Domain,
		GuideName: req.GuideName,
	}
	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		if errors.Is(err, repository.ErrDuplicateGroup) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// UpdateGroup godoc
// PUT /api/groups/:group_id
// Updates a project group's details (admin only).
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	groupID := c.Param("group_id")
	if !review.ValidGroupID(groupID) {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	var req model.UpdateProjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.projects.GetByGroupID(c.Request.Context(), groupID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	project := &model.Project{
		GroupID:   groupID,
		Title:     req.Title,
		Domain:    req.Domain,
		GuideName: req.GuideName,
	}
	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteGroup godoc
// DELETE /api/groups/:group_id
// Removes a group and everything hanging off it (admin only).
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID := c.Param("group_id")
	if !review.ValidGroupID(groupID) {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}
	if err := h.projects.Delete(c.Request.Context(), groupID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// AddMember godoc
// POST /api/groups/:group_id/members
// Adds a student to a group (admin only).
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID := c.Param("group_id")
	if !review.ValidGroupID(groupID) {
		response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
		return
	}

	var req model.CreateMemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.projects.GetByGroupID(c.Request.Context(), groupID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	member := &model.Member{RollNo: req.RollNo, Name: req.Name, GroupID: groupID}
	if err := h.members.Create(c.Request.Context(), member); err != nil {
		if errors.Is(err, repository.ErrDuplicateRollNo) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveMember godoc
// DELETE /api/groups/:group_id/members/:roll_no
// Removes a student from a group (admin only).
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	rollNo := c.Param("roll_no")
	if !review.ValidRollNo(rollNo) {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	if err := h.members.Delete(c.Request.Context(), rollNo); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// AssignPanel godoc
// POST /api/panels
// Replaces an evaluator's panel assignment (admin only).
func (h *GroupHandler) AssignPanel(c *gin.Context) {
	var req model.AssignPanelRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	for _, id := range req.GroupIDs {
		if !review.ValidGroupID(id) {
			response.Fail(c, http.StatusBadRequest, response.ErrMissingGroupID)
			return
		}
	}

	// Assignments must reference groups that actually exist.
	known, err := h.projects.ListGroupIDs(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}
	for _, id := range req.GroupIDs {
		if _, ok := knownSet[id]; !ok {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
	}

	if err := h.panels.Replace(c.Request.Context(), req.UserID, req.PanelName, req.GroupIDs); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Panel assignment saved"})
}

// MyPanel godoc
// GET /api/panels/me
// Returns the authenticated evaluator's panel assignments.
func (h *GroupHandler) MyPanel(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	assignments, err := h.panels.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}
