package model

import "time"

// Mark is one stored rubric cell: a numeric score or a single-letter flag
// for one student against one criterion of one review.
type Mark struct {
	GroupID      string    `json:"group_id"`
	ReviewNumber int       `json:"review_number"`
	RollNo       string    `json:"roll_no"`
	CriteriaID   string    `json:"criteria_id"`
	Value        string    `json:"value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MarkRecord is one flat per-student wire row: "group_id" and "roll_no"
// keys plus one key per criteria ID. On output a "total" key is added.
// Keys that are not criteria of the review are ignored on input.
type MarkRecord map[string]string

// SaveMarksRequest is the payload for saving a review marks sheet.
type SaveMarksRequest struct {
	Marks []MarkRecord `json:"marks" binding:"required,min=1"`
}

// MarksSheet is the stored sheet returned to the grid: cell values keyed by
// criteria ID then roll number, plus the computed per-student totals.
type MarksSheet struct {
	GroupID      string                       `json:"group_id"`
	ReviewNumber int                          `json:"review_number"`
	Marks        map[string]map[string]string `json:"marks"`
	Totals       map[string]string            `json:"totals"`
}

// StudentTotal is one row of the totals view for a review.
type StudentTotal struct {
	GroupID      string  `json:"group_id"`
	ReviewNumber int     `json:"review_number"`
	RollNo       string  `json:"roll_no"`
	Total        float64 `json:"total"`
}
