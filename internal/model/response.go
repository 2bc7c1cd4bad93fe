package model

import "time"

// ResponseSheet is one group's questionnaire submission for one review.
// Responses are keyed by raw question code (e.g. "que_1.2.1") exactly as
// defined in the rubric; codes are never mangled on the way in or out.
type ResponseSheet struct {
	GroupID        string            `json:"group_id"`
	ReviewNumber   int               `json:"review_number"`
	SubmissionDate string            `json:"submission_date"`
	Comments       string            `json:"comments"`
	Responses      map[string]string `json:"responses"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// QuestionResponse is one answered checklist item. Values are choice
// letters or numbers; the service checks them against the question bank,
// so binding only bounds the length.
type QuestionResponse struct {
	QuestionCode  string `json:"question_code" binding:"required,min=1,max=50"`
	ResponseValue string `json:"response_value" binding:"required,max=50"`
}

// SaveResponsesRequest is the payload for saving a questionnaire.
type SaveResponsesRequest struct {
	GroupID   string             `json:"group_id" binding:"required,min=1,max=20"`
	Date      string             `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Comments  string             `json:"comments" binding:"omitempty,max=2000"`
	Responses []QuestionResponse `json:"responses" binding:"required,min=1,dive"`
}

// SaveResponsesResult reports whether the upsert created a fresh submission
// or updated an existing one.
type SaveResponsesResult struct {
	Action    string    `json:"action"` // "created" or "updated"
	UpdatedAt time.Time `json:"updated_at"`
}
