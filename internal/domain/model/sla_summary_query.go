package model

import "time"

// SLASummaryListOptions filters summary listings. Every filter targets an indexed column.
type SLASummaryListOptions struct {
	AppName       *string
	ParentID      *string
	NominalFrom   *time.Time
	NominalTo     *time.Time
	SLAProcessed  *int8
	ModifiedSince *time.Time
	Limit         int
	Offset        int
}

// SLASummaryActuals carries observed timing for a job.
type SLASummaryActuals struct {
	ActualStart *time.Time `json:"actual_start"`
	ActualEnd   *time.Time `json:"actual_end"`
}
