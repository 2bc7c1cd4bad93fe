package model

import "time"

// ReportLog records one generated PDF so stale files can be pruned and
// downloads can be audited.
type ReportLog struct {
	ID           int       `json:"id"`
	GroupID      string    `json:"group_id"`
	ReviewNumber int       `json:"review_number"`
	FileName     string    `json:"file_name"`
	GeneratedBy  string    `json:"generated_by"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// GenerateReportRequest asks for a PDF of one group's review sheet.
type GenerateReportRequest struct {
	GroupID string `json:"group_id" binding:"required,min=1,max=20"`
}

// GenerateReportResponse points at the rendered file.
type GenerateReportResponse struct {
	Success     bool   `json:"success"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}
