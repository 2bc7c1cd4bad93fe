package model

import "time"

// Member represents one student inside a project group.
type Member struct {
	RollNo    string    `json:"roll_no"`
	Name      string    `json:"name"`
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberAttendance is a member joined with their presence flag for one review.
type MemberAttendance struct {
	Member
	Present bool `json:"present"`
}

// MemberEntry is the member listing wire row consumed by the review pages.
type MemberEntry struct {
	RollNo     string `json:"roll_no"`
	Name       string `json:"name"`
	Attendance bool   `json:"attendance"`
}

// CreateMemberRequest is the payload for adding a student to a group.
type CreateMemberRequest struct {
	RollNo string `json:"roll_no" binding:"required,min=1,max=15,alphanum"`
	Name   string `json:"name" binding:"required,min=2,max=100"`
}

// AttendanceEntry toggles one student's presence.
type AttendanceEntry struct {
	RollNo  string `json:"roll_no" binding:"required,min=1,max=15,alphanum"`
	Present *bool  `json:"present" binding:"required"`
}

// SaveAttendanceRequest updates presence flags for a group in one review.
type SaveAttendanceRequest struct {
	GroupID    string            `json:"group_id" binding:"required,min=1,max=20"`
	Attendance []AttendanceEntry `json:"attendance" binding:"required,min=1,dive"`
}

// AttendanceEvent is broadcast to live dashboard subscribers whenever an
// attendance flag changes.
type AttendanceEvent struct {
	GroupID      string    `json:"group_id"`
	ReviewNumber int       `json:"review_number"`
	RollNo       string    `json:"roll_no"`
	Present      bool      `json:"present"`
	UpdatedBy    string    `json:"updated_by"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AttendanceSummary aggregates presence counts for the dashboard.
type AttendanceSummary struct {
	ReviewNumber int `json:"review_number"`
	TotalMembers int `json:"total_members"`
	PresentCount int `json:"present_count"`
	AbsentCount  int `json:"absent_count"`
}
