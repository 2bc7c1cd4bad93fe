package model

import "time"

// Project represents one student project group.
type Project struct {
	GroupID     string    `json:"group_id"`
	Title       string    `json:"project_title"`
	Domain      string    `json:"domain"`
	GuideName   string    `json:"guide_name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProjectRequest is the payload for registering a project group.
type CreateProjectRequest struct {
	GroupID   string `json:"group_id" binding:"required,min=1,max=20"`
	Title     string `json:"project_title" binding:"required,min=2,max=200"`
	Domain    string `json:"domain" binding:"omitempty,max=100"`
	GuideName string `json:"guide_name" binding:"omitempty,max=100"`
}

// UpdateProjectRequest is the payload for updating a project group.
type UpdateProjectRequest struct {
	Title     string `json:"project_title" binding:"required,min=2,max=200"`
	Domain    string `json:"domain" binding:"omitempty,max=100"`
	GuideName string `json:"guide_name" binding:"omitempty,max=100"`
}
