// Package model defines the core data types shared by the SLA summary store.
package model

import (
	"errors"
	"fmt"
)

// ErrInvalidEnumValue is returned when a stored or submitted status name is not
// part of the SLA event vocabulary.
var ErrInvalidEnumValue = errors.New("invalid enumeration value")

// SLAStatus is the overall SLA classification of a job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, String/Valid need value receiver
type SLAStatus string

const (
	// SLAStatusNotStarted indicates the job has not started yet.
	SLAStatusNotStarted SLAStatus = "NOT_STARTED"
	// SLAStatusInProcess indicates the job is running and no SLA has been missed yet.
	SLAStatusInProcess SLAStatus = "IN_PROCESS"
	// SLAStatusMet indicates all SLA targets were met.
	SLAStatusMet SLAStatus = "MET"
	// SLAStatusMiss indicates at least one SLA target was missed.
	SLAStatusMiss SLAStatus = "MISS"
)

// EventStatus is the outcome of an individual SLA event (start, end, duration).
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, String/Valid need value receiver
type EventStatus string

const (
	EventStatusStartMet     EventStatus = "START_MET"
	EventStatusStartMiss    EventStatus = "START_MISS"
	EventStatusEndMet       EventStatus = "END_MET"
	EventStatusEndMiss      EventStatus = "END_MISS"
	EventStatusDurationMet  EventStatus = "DURATION_MET"
	EventStatusDurationMiss EventStatus = "DURATION_MISS"
	EventStatusNone         EventStatus = "NONE"
)

// AllSLAStatuses returns the SLA status vocabulary in declaration order.
func AllSLAStatuses() []SLAStatus {
	return []SLAStatus{SLAStatusNotStarted, SLAStatusInProcess, SLAStatusMet, SLAStatusMiss}
}

// AllEventStatuses returns the event status vocabulary in declaration order.
func AllEventStatuses() []EventStatus {
	return []EventStatus{
		EventStatusStartMet,
		EventStatusStartMiss,
		EventStatusEndMet,
		EventStatusEndMiss,
		EventStatusDurationMet,
		EventStatusDurationMiss,
		EventStatusNone,
	}
}

// ParseSLAStatus resolves an exact canonical name. Matching is case-sensitive and
// never falls back to a default value.
func ParseSLAStatus(s string) (SLAStatus, error) {
	st := SLAStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("sla status %q: %w", s, ErrInvalidEnumValue)
	}
	return st, nil
}

// ParseEventStatus resolves an exact canonical name. Matching is case-sensitive and
// never falls back to a default value.
func ParseEventStatus(s string) (EventStatus, error) {
	st := EventStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("event status %q: %w", s, ErrInvalidEnumValue)
	}
	return st, nil
}

// Valid returns true if the SLAStatus is part of the vocabulary.
func (s SLAStatus) Valid() bool {
	switch s {
	case SLAStatusNotStarted, SLAStatusInProcess, SLAStatusMet, SLAStatusMiss:
		return true
	default:
		return false
	}
}

// String returns the canonical name.
func (s SLAStatus) String() string { return string(s) }

// MarshalText implements encoding.TextMarshaler.
func (s SLAStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("sla status %q: %w", string(s), ErrInvalidEnumValue)
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SLAStatus) UnmarshalText(text []byte) error {
	st, err := ParseSLAStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Valid returns true if the EventStatus is part of the vocabulary.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusStartMet, EventStatusStartMiss,
		EventStatusEndMet, EventStatusEndMiss,
		EventStatusDurationMet, EventStatusDurationMiss,
		EventStatusNone:
		return true
	default:
		return false
	}
}

// String returns the canonical name.
func (s EventStatus) String() string { return string(s) }

// MarshalText implements encoding.TextMarshaler.
func (s EventStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("event status %q: %w", string(s), ErrInvalidEnumValue)
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *EventStatus) UnmarshalText(text []byte) error {
	st, err := ParseEventStatus(string(text))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
