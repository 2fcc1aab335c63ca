package testutil

import (
	"time"

	"github.com/target/sla-summary/internal/domain/model"
)

// SLASummaryBuilder provides a fluent interface for building summaries in tests.
type SLASummaryBuilder struct {
	s *model.SLASummary
}

// NewSLASummary starts a builder for the given job id with a nominal time of TestTime.
func NewSLASummary(jobID string) *SLASummaryBuilder {
	s := model.NewSLASummary(jobID)
	s.NominalTime = TimePtr(TestTime())
	return &SLASummaryBuilder{s: s}
}

// WithApp sets the application name and owner.
func (b *SLASummaryBuilder) WithApp(appName, user string) *SLASummaryBuilder {
	b.s.AppName = appName
	b.s.User = user
	return b
}

// WithParent sets the parent job id.
func (b *SLASummaryBuilder) WithParent(parentID string) *SLASummaryBuilder {
	b.s.ParentID = parentID
	return b
}

// WithNominalTime overrides the nominal time.
func (b *SLASummaryBuilder) WithNominalTime(t time.Time) *SLASummaryBuilder {
	b.s.NominalTime = TimePtr(t)
	return b
}

// WithExpectedWindow sets expected start, expected duration (ms), and the derived expected end.
func (b *SLASummaryBuilder) WithExpectedWindow(start time.Time, durationMs int64) *SLASummaryBuilder {
	b.s.ExpectedStart = TimePtr(start)
	b.s.ExpectedDuration = durationMs
	b.s.ExpectedEnd = TimePtr(start.Add(time.Duration(durationMs) * time.Millisecond))
	return b
}

// WithActuals records actual start and end through the record's own mutators.
func (b *SLASummaryBuilder) WithActuals(start, end time.Time) *SLASummaryBuilder {
	b.s.SetActualStart(TimePtr(start))
	b.s.SetActualEnd(TimePtr(end))
	return b
}

// WithStatus sets the job, SLA, and event statuses.
func (b *SLASummaryBuilder) WithStatus(jobStatus string, sla model.SLAStatus, ev model.EventStatus) *SLASummaryBuilder {
	b.s.JobStatus = jobStatus
	b.s.SLAStatus = &sla
	b.s.EventStatus = &ev
	return b
}

// WithProcessed sets the processing stage marker.
func (b *SLASummaryBuilder) WithProcessed(stage int8) *SLASummaryBuilder {
	b.s.SLAProcessed = stage
	return b
}

// WithLastModified sets the last modification time.
func (b *SLASummaryBuilder) WithLastModified(t time.Time) *SLASummaryBuilder {
	b.s.LastModified = TimePtr(t)
	return b
}

// Build returns a copy of the summary built so far.
func (b *SLASummaryBuilder) Build() *model.SLASummary {
	return b.s.Clone()
}
