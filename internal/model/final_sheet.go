package model

import "time"

// ReviewScore is one student's outcome for a single review inside the final
// sheet: either a numeric total or the literal "Absent".
type ReviewScore struct {
	ReviewNumber int     `json:"review_number"`
	Absent       bool    `json:"absent"`
	Total        float64 `json:"total"`
}

// FinalSheetRow aggregates one student across every review.
type FinalSheetRow struct {
	RollNo     string        `json:"roll_no"`
	Name       string        `json:"name"`
	Scores     []ReviewScore `json:"scores"`
	GrandTotal float64       `json:"grand_total"`
}

// FinalSheet is the consolidated summary for one group.
type FinalSheet struct {
	GroupID     string          `json:"group_id"`
	Title       string          `json:"project_title"`
	GuideName   string          `json:"guide_name"`
	Rows        []FinalSheetRow `json:"rows"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// FinalSheetSummary is the wire shape of the final sheet page: the group's
// members plus per-review totals keyed "review0".."review4" then roll
// number. An absent review shows the literal "Absent" instead of a total.
type FinalSheetSummary struct {
	GroupID     string                       `json:"group_id"`
	Members     []Member                     `json:"members"`
	ReviewMarks map[string]map[string]string `json:"review_marks"`
}

// FinalComments is the overall remark stored against a group.
type FinalComments struct {
	GroupID   string    `json:"group_id"`
	Comments  string    `json:"comments"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveFinalCommentsRequest is the payload for saving the overall remark.
type SaveFinalCommentsRequest struct {
	GroupID  string `json:"group_id" binding:"required,min=1,max=20"`
	Comments string `json:"comments" binding:"omitempty,max=4000"`
}
