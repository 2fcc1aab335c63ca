package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMissingDependency is returned when a summary is built from a calculation
// status that is absent or has no registration attached.
var ErrMissingDependency = errors.New("missing dependency")

// ErrStageOutOfRange is returned when a processing stage does not fit the
// 0..127 range of the sla_processed column.
var ErrStageOutOfRange = errors.New("sla processed stage out of range")

// UnknownDuration marks a duration that has not been observed yet.
const UnknownDuration int64 = -1

// SLASummary is the per-job SLA summary record: expected and observed timing,
// status classification and processing stage.
//
// ActualDuration is derived from ActualStart and ActualEnd. The setters keep it
// current; code that assigns the times directly calls RecomputeActualDuration.
// Validate rejects a record whose duration disagrees with its times.
type SLASummary struct {
	JobID            string       `json:"job_id"`
	User             string       `json:"user"`
	AppName          string       `json:"app_name"`
	ParentID         string       `json:"parent_id"`
	NominalTime      *time.Time   `json:"nominal_time"`
	ExpectedStart    *time.Time   `json:"expected_start"`
	ExpectedEnd      *time.Time   `json:"expected_end"`
	ExpectedDuration int64        `json:"expected_duration"`
	ActualStart      *time.Time   `json:"actual_start"`
	ActualEnd        *time.Time   `json:"actual_end"`
	ActualDuration   int64        `json:"actual_duration"`
	JobStatus        string       `json:"job_status"`
	EventStatus      *EventStatus `json:"event_status"`
	SLAStatus        *SLAStatus   `json:"sla_status"`
	SLAProcessed     int8         `json:"sla_processed"`
	LastModified     *time.Time   `json:"last_modified"`
}

// NewSLASummary returns an empty record for jobID with no observed duration.
func NewSLASummary(jobID string) *SLASummary {
	return &SLASummary{
		JobID:          jobID,
		ActualDuration: UnknownDuration,
	}
}

// NewSLASummaryFromCalc builds a summary by copying fields out of a calculation
// status and its registration. The result shares no pointers with the inputs.
func NewSLASummaryFromCalc(calc *SLACalcStatus) (*SLASummary, error) {
	if calc == nil {
		return nil, fmt.Errorf("sla calc status: %w", ErrMissingDependency)
	}
	reg := calc.Registration
	if reg == nil {
		return nil, fmt.Errorf("sla registration for job %q: %w", calc.JobID, ErrMissingDependency)
	}

	if calc.SLAProcessed < 0 || calc.SLAProcessed > math.MaxInt8 {
		return nil, fmt.Errorf("sla processed %d for job %q: %w", calc.SLAProcessed, calc.JobID, ErrStageOutOfRange)
	}

	s := NewSLASummary(calc.JobID)
	s.AppName = reg.AppName
	s.ExpectedStart = copyTime(reg.ExpectedStart)
	s.ExpectedEnd = copyTime(reg.ExpectedEnd)
	s.ExpectedDuration = reg.ExpectedDuration
	s.JobStatus = calc.JobStatus
	if calc.SLAStatus != nil {
		st := *calc.SLAStatus
		s.SLAStatus = &st
	}
	if calc.EventStatus != nil {
		ev := *calc.EventStatus
		s.EventStatus = &ev
	}
	s.SLAProcessed = int8(calc.SLAProcessed) // #nosec G115 - range checked above
	s.LastModified = copyTime(calc.LastModified)
	s.User = reg.User
	s.ParentID = reg.ParentID
	return s, nil
}

// SetActualStart records the observed start time and recomputes ActualDuration.
func (s *SLASummary) SetActualStart(t *time.Time) {
	s.ActualStart = copyTime(t)
	s.RecomputeActualDuration()
}

// SetActualEnd records the observed end time and recomputes ActualDuration.
func (s *SLASummary) SetActualEnd(t *time.Time) {
	s.ActualEnd = copyTime(t)
	s.RecomputeActualDuration()
}

// RecomputeActualDuration derives ActualDuration from the observed times. It
// stays UnknownDuration until both are present and ordered.
func (s *SLASummary) RecomputeActualDuration() {
	s.ActualDuration = s.derivedActualDuration()
}

func (s *SLASummary) derivedActualDuration() int64 {
	if s.ActualStart == nil || s.ActualEnd == nil || s.ActualEnd.Before(*s.ActualStart) {
		return UnknownDuration
	}
	return s.ActualEnd.Sub(*s.ActualStart).Milliseconds()
}

// Validate checks the record invariants that storage relies on.
func (s *SLASummary) Validate() error {
	if s.JobID == "" {
		return errors.New("job id is required")
	}
	if s.SLAProcessed < 0 {
		return errors.New("sla processed must be non-negative")
	}
	if s.ActualDuration < UnknownDuration {
		return errors.New("actual duration must be at least -1")
	}
	if want := s.derivedActualDuration(); s.ActualDuration != want {
		return fmt.Errorf("actual duration %d does not match actual start/end (want %d)", s.ActualDuration, want)
	}
	if s.EventStatus != nil && !s.EventStatus.Valid() {
		return fmt.Errorf("event status %q: %w", string(*s.EventStatus), ErrInvalidEnumValue)
	}
	if s.SLAStatus != nil && !s.SLAStatus.Valid() {
		return fmt.Errorf("sla status %q: %w", string(*s.SLAStatus), ErrInvalidEnumValue)
	}
	return nil
}

// Clone returns a deep copy of the record.
func (s *SLASummary) Clone() *SLASummary {
	if s == nil {
		return nil
	}
	c := *s
	c.NominalTime = copyTime(s.NominalTime)
	c.ExpectedStart = copyTime(s.ExpectedStart)
	c.ExpectedEnd = copyTime(s.ExpectedEnd)
	c.ActualStart = copyTime(s.ActualStart)
	c.ActualEnd = copyTime(s.ActualEnd)
	c.LastModified = copyTime(s.LastModified)
	if s.EventStatus != nil {
		ev := *s.EventStatus
		c.EventStatus = &ev
	}
	if s.SLAStatus != nil {
		st := *s.SLAStatus
		c.SLAStatus = &st
	}
	return &c
}

// slaSummaryJSON breaks the MarshalJSON/UnmarshalJSON recursion.
type slaSummaryJSON SLASummary

// MarshalJSON renders timestamps in UTC.
func (s SLASummary) MarshalJSON() ([]byte, error) {
	out := slaSummaryJSON(*s.inZone(time.UTC))
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record. actual_duration is derived from
// actual_start and actual_end; a value supplied for it is ignored.
func (s *SLASummary) UnmarshalJSON(data []byte) error {
	var in slaSummaryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = SLASummary(in)
	s.RecomputeActualDuration()
	return nil
}

// JSONObject returns the record as a key/value map with timestamps formatted
// as RFC 3339 in loc. A nil loc means UTC.
func (s *SLASummary) JSONObject(loc *time.Location) map[string]any {
	if loc == nil {
		loc = time.UTC
	}
	z := s.inZone(loc)
	return map[string]any{
		"job_id":            z.JobID,
		"user":              z.User,
		"app_name":          z.AppName,
		"parent_id":         z.ParentID,
		"nominal_time":      formatTime(z.NominalTime),
		"expected_start":    formatTime(z.ExpectedStart),
		"expected_end":      formatTime(z.ExpectedEnd),
		"expected_duration": z.ExpectedDuration,
		"actual_start":      formatTime(z.ActualStart),
		"actual_end":        formatTime(z.ActualEnd),
		"actual_duration":   z.ActualDuration,
		"job_status":        z.JobStatus,
		"event_status":      enumName(z.EventStatus),
		"sla_status":        enumName(z.SLAStatus),
		"sla_processed":     z.SLAProcessed,
		"last_modified":     formatTime(z.LastModified),
	}
}

func (s *SLASummary) inZone(loc *time.Location) *SLASummary {
	c := s.Clone()
	for _, t := range []**time.Time{
		&c.NominalTime, &c.ExpectedStart, &c.ExpectedEnd,
		&c.ActualStart, &c.ActualEnd, &c.LastModified,
	} {
		if *t != nil {
			v := (*t).In(loc)
			*t = &v
		}
	}
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func enumName[T ~string](v *T) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
