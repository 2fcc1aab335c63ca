package data

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/target/sla-summary/internal/domain/model"
)

// storagePrecision is the resolution of a Postgres TIMESTAMPTZ column.
const storagePrecision = time.Microsecond

// slaSummaryRow is the column-level representation of a summary.
type slaSummaryRow struct {
	JobID            string         `db:"job_id"`
	User             sql.NullString `db:"user_name"`
	AppName          sql.NullString `db:"app_name"`
	ParentID         sql.NullString `db:"parent_id"`
	NominalTime      sql.NullTime   `db:"nominal_time"`
	ExpectedStart    sql.NullTime   `db:"expected_start"`
	ExpectedEnd      sql.NullTime   `db:"expected_end"`
	ExpectedDuration int64          `db:"expected_duration"`
	ActualStart      sql.NullTime   `db:"actual_start"`
	ActualEnd        sql.NullTime   `db:"actual_end"`
	ActualDuration   int64          `db:"actual_duration"`
	JobStatus        sql.NullString `db:"job_status"`
	EventStatus      sql.NullString `db:"event_status"`
	SLAStatus        sql.NullString `db:"sla_status"`
	SLAProcessed     int16          `db:"sla_processed"`
	LastModified     sql.NullTime   `db:"last_modified"`
}

// scanDest returns pointers in slaSummaryColumns order.
func (r *slaSummaryRow) scanDest() []any {
	return []any{
		&r.JobID, &r.User, &r.AppName, &r.ParentID, &r.NominalTime,
		&r.ExpectedStart, &r.ExpectedEnd, &r.ExpectedDuration,
		&r.ActualStart, &r.ActualEnd, &r.ActualDuration,
		&r.JobStatus, &r.EventStatus, &r.SLAStatus, &r.SLAProcessed, &r.LastModified,
	}
}

// args returns bind values in slaSummaryColumns order.
func (r *slaSummaryRow) args() []any {
	return []any{
		r.JobID, r.User, r.AppName, r.ParentID, r.NominalTime,
		r.ExpectedStart, r.ExpectedEnd, r.ExpectedDuration,
		r.ActualStart, r.ActualEnd, r.ActualDuration,
		r.JobStatus, r.EventStatus, r.SLAStatus, r.SLAProcessed, r.LastModified,
	}
}

func rowFromSummary(s *model.SLASummary) slaSummaryRow {
	return slaSummaryRow{
		JobID:            s.JobID,
		User:             toNullString(s.User),
		AppName:          toNullString(s.AppName),
		ParentID:         toNullString(s.ParentID),
		NominalTime:      ToStorageTime(s.NominalTime),
		ExpectedStart:    ToStorageTime(s.ExpectedStart),
		ExpectedEnd:      ToStorageTime(s.ExpectedEnd),
		ExpectedDuration: s.ExpectedDuration,
		ActualStart:      ToStorageTime(s.ActualStart),
		ActualEnd:        ToStorageTime(s.ActualEnd),
		ActualDuration:   s.ActualDuration,
		JobStatus:        toNullString(s.JobStatus),
		EventStatus:      enumToNullString(s.EventStatus),
		SLAStatus:        enumToNullString(s.SLAStatus),
		SLAProcessed:     int16(s.SLAProcessed),
		LastModified:     ToStorageTime(s.LastModified),
	}
}

// toSummary converts a stored row. Status names outside the vocabulary fail
// here rather than being coerced.
func (r *slaSummaryRow) toSummary() (*model.SLASummary, error) {
	s := &model.SLASummary{
		JobID:            r.JobID,
		User:             r.User.String,
		AppName:          r.AppName.String,
		ParentID:         r.ParentID.String,
		NominalTime:      FromStorageTime(r.NominalTime),
		ExpectedStart:    FromStorageTime(r.ExpectedStart),
		ExpectedEnd:      FromStorageTime(r.ExpectedEnd),
		ExpectedDuration: r.ExpectedDuration,
		ActualStart:      FromStorageTime(r.ActualStart),
		ActualEnd:        FromStorageTime(r.ActualEnd),
		ActualDuration:   r.ActualDuration,
		JobStatus:        r.JobStatus.String,
		SLAProcessed:     int8(r.SLAProcessed), // #nosec G115 - column is range-checked
		LastModified:     FromStorageTime(r.LastModified),
	}

	if r.EventStatus.Valid {
		ev, err := model.ParseEventStatus(r.EventStatus.String)
		if err != nil {
			return nil, fmt.Errorf("read sla summary %s: %w", r.JobID, err)
		}
		s.EventStatus = &ev
	}
	if r.SLAStatus.Valid {
		st, err := model.ParseSLAStatus(r.SLAStatus.String)
		if err != nil {
			return nil, fmt.Errorf("read sla summary %s: %w", r.JobID, err)
		}
		s.SLAStatus = &st
	}
	return s, nil
}

// ToStorageTime converts a record timestamp to its column value: nil maps to
// NULL, anything else is normalised to UTC at column precision.
func ToStorageTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC().Truncate(storagePrecision), Valid: true}
}

// FromStorageTime converts a column value back to a record timestamp.
func FromStorageTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func enumToNullString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}
