package data

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestToStorageTime(t *testing.T) {
	cdt := time.FixedZone("CDT", -5*3600)

	tests := []struct {
		name string
		in   *time.Time
		want sql.NullTime
	}{
		{
			name: "nil is NULL",
			in:   nil,
			want: sql.NullTime{},
		},
		{
			name: "sub-microsecond digits are truncated",
			in:   timePtr(time.Date(2024, 6, 1, 12, 30, 0, 123456789, time.UTC)),
			want: sql.NullTime{Time: time.Date(2024, 6, 1, 12, 30, 0, 123456000, time.UTC), Valid: true},
		},
		{
			name: "other zones are normalised to UTC",
			in:   timePtr(time.Date(2024, 6, 1, 7, 30, 0, 500, cdt)),
			want: sql.NullTime{Time: time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), Valid: true},
		},
		{
			name: "microsecond precision is kept",
			in:   timePtr(time.Date(2024, 6, 1, 12, 30, 0, 999999000, time.UTC)),
			want: sql.NullTime{Time: time.Date(2024, 6, 1, 12, 30, 0, 999999000, time.UTC), Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToStorageTime(tt.in)
			assert.Equal(t, tt.want.Valid, got.Valid)
			if !tt.want.Valid {
				return
			}
			assert.Equal(t, time.UTC, got.Time.Location())
			assert.True(t, tt.want.Time.Equal(got.Time), "got %s want %s", got.Time, tt.want.Time)
		})
	}
}

func TestFromStorageTime(t *testing.T) {
	assert.Nil(t, FromStorageTime(sql.NullTime{}))
	assert.Nil(t, FromStorageTime(sql.NullTime{Time: time.Now(), Valid: false}))

	stored := time.Date(2024, 6, 1, 12, 30, 0, 123456000, time.FixedZone("X", 3600))
	got := FromStorageTime(sql.NullTime{Time: stored, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(stored))
}

func TestStorageTime_RoundTrip(t *testing.T) {
	for _, in := range []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.FixedZone("IST", 5*3600+1800)),
		time.Date(1999, 12, 31, 18, 0, 0, 1, time.FixedZone("PST", -8*3600)),
	} {
		out := FromStorageTime(ToStorageTime(&in))
		require.NotNil(t, out)
		assert.True(t, out.Equal(in.Truncate(time.Microsecond)), "round trip of %s gave %s", in, out)

		again := FromStorageTime(ToStorageTime(out))
		assert.Equal(t, *out, *again)
	}
	assert.Nil(t, FromStorageTime(ToStorageTime(nil)))
}
