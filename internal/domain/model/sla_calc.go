package model

import "time"

// SLARegistration holds the SLA targets registered for a job.
type SLARegistration struct {
	JobID            string     `json:"job_id"`
	AppName          string     `json:"app_name"`
	AppType          string     `json:"app_type,omitempty"`
	User             string     `json:"user"`
	ParentID         string     `json:"parent_id,omitempty"`
	NominalTime      *time.Time `json:"nominal_time,omitempty"`
	ExpectedStart    *time.Time `json:"expected_start,omitempty"`
	ExpectedEnd      *time.Time `json:"expected_end,omitempty"`
	ExpectedDuration int64      `json:"expected_duration"`
}

// SLACalcStatus is the in-flight SLA calculation state of a job together with
// the registration it was computed against.
type SLACalcStatus struct {
	JobID        string           `json:"job_id"`
	JobStatus    string           `json:"job_status"`
	SLAStatus    *SLAStatus       `json:"sla_status,omitempty"`
	EventStatus  *EventStatus     `json:"event_status,omitempty"`
	SLAProcessed int              `json:"sla_processed"`
	LastModified *time.Time       `json:"last_modified,omitempty"`
	Registration *SLARegistration `json:"registration"`
}
