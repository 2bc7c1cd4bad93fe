package model

import "time"

// PanelAssignment maps an evaluator to the groups they review.
type PanelAssignment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	GroupID   string    `json:"group_id"`
	PanelName string    `json:"panel_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignPanelRequest is the payload for assigning groups to an evaluator.
type AssignPanelRequest struct {
	UserID    int      `json:"user_id" binding:"required,min=1"`
	PanelName string   `json:"panel_name" binding:"required,min=1,max=50"`
	GroupIDs  []string `json:"group_ids" binding:"required,min=1,dive,min=1,max=20"`
}
