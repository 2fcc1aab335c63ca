package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSLAStatus_RoundTrip(t *testing.T) {
	for _, st := range AllSLAStatuses() {
		t.Run(st.String(), func(t *testing.T) {
			parsed, err := ParseSLAStatus(st.String())
			require.NoError(t, err)
			assert.Equal(t, st.String(), parsed.String())
		})
	}
}

func TestParseEventStatus_RoundTrip(t *testing.T) {
	for _, st := range AllEventStatuses() {
		t.Run(st.String(), func(t *testing.T) {
			parsed, err := ParseEventStatus(st.String())
			require.NoError(t, err)
			assert.Equal(t, st.String(), parsed.String())
		})
	}
}

func TestParseStatus_RejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "lower case", input: "met"},
		{name: "mixed case", input: "Start_Met"},
		{name: "padded", input: " MET "},
		{name: "unknown", input: "VIOLATED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sla, err := ParseSLAStatus(tt.input)
			require.ErrorIs(t, err, ErrInvalidEnumValue)
			assert.Empty(t, sla)

			ev, err := ParseEventStatus(tt.input)
			require.ErrorIs(t, err, ErrInvalidEnumValue)
			assert.Empty(t, ev)
		})
	}
}

func TestEventStatus_TextMarshalling(t *testing.T) {
	var got struct {
		Status *EventStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"DURATION_MISS"}`), &got))
	require.NotNil(t, got.Status)
	assert.Equal(t, EventStatusDurationMiss, *got.Status)

	err := json.Unmarshal([]byte(`{"status":"duration_miss"}`), &got)
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	got.Status = nil
	require.NoError(t, json.Unmarshal([]byte(`{"status":null}`), &got))
	assert.Nil(t, got.Status)
}

func TestSLAStatus_MarshalTextRejectsInvalid(t *testing.T) {
	_, err := SLAStatus("bogus").MarshalText()
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	b, err := SLAStatusInProcess.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "IN_PROCESS", string(b))
}
