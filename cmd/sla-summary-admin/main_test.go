package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/sla-summary/config"
)

func sampleObject() map[string]any {
	return map[string]any{
		"job_id":       "0000001-oozie-W",
		"app_name":     "nightly-etl",
		"sla_status":   "MET",
		"event_status": "END_MET",
		"actual_start": "2024-01-01T12:00:00Z",
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := commandNames()
	assert.Equal(t, []string{"get", "mark-processed", "migrate", "migrate-status", "purge"}, names)
	for _, name := range names {
		c := commands()[name]
		assert.Equal(t, name, c.name)
		assert.NotEmpty(t, c.description)
		assert.NotNil(t, c.run)
	}
}

func TestParseGetFlags(t *testing.T) {
	t.Run("job id before flags", func(t *testing.T) {
		opts, err := parseGetFlags([]string{"job-1", "--query", "sla_status", "--tz", "UTC"})
		require.NoError(t, err)
		assert.Equal(t, "job-1", opts.JobID)
		assert.Equal(t, "sla_status", opts.Query)
		assert.Equal(t, "UTC", opts.TZ)
		assert.Equal(t, defaultCommandTimeout, opts.Timeout)
	})

	t.Run("job id after flags", func(t *testing.T) {
		opts, err := parseGetFlags([]string{"--timeout", "5s", "job-2"})
		require.NoError(t, err)
		assert.Equal(t, "job-2", opts.JobID)
		assert.Equal(t, 5*time.Second, opts.Timeout)
	})

	t.Run("missing job id", func(t *testing.T) {
		_, err := parseGetFlags(nil)
		require.Error(t, err)
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := parseGetFlags([]string{"job-1", "--query", "[?"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --query")
	})
}

func TestParseMarkProcessedFlags(t *testing.T) {
	opts, err := parseMarkProcessedFlags([]string{"job-1", "--stage", "2"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", opts.JobID)
	assert.Equal(t, 2, opts.Stage)

	_, err = parseMarkProcessedFlags([]string{"job-1"})
	require.Error(t, err)

	_, err = parseMarkProcessedFlags([]string{"job-1", "--stage", "128"})
	require.Error(t, err)
}

func TestParsePurgeFlags(t *testing.T) {
	opts, err := parsePurgeFlags([]string{"--older-than", "2160h", "--yes"})
	require.NoError(t, err)
	assert.Equal(t, 2160*time.Hour, opts.OlderThan)
	assert.Equal(t, 1000, opts.BatchSize)
	assert.True(t, opts.Yes)

	_, err = parsePurgeFlags(nil)
	require.Error(t, err)

	_, err = parsePurgeFlags([]string{"--older-than", "1h"})
	require.Error(t, err)

	_, err = parsePurgeFlags([]string{"--older-than", "48h", "--batch-size", "0"})
	require.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	t.Run("whole object", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printSummary(&buf, sampleObject(), ""))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "0000001-oozie-W", got["job_id"])
	})

	t.Run("field query", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printSummary(&buf, sampleObject(), "sla_status"))
		assert.Equal(t, "\"MET\"\n", buf.String())
	})

	t.Run("multiselect query", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printSummary(&buf, sampleObject(), "[app_name, event_status]"))

		var got []string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, []string{"nightly-etl", "END_MET"}, got)
	})
}

func TestPrintMigrationStatus(t *testing.T) {
	var buf bytes.Buffer
	err := printMigrationStatus(&buf, []string{"0001_init", "0002_indexes"}, []string{"0001_init"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "0001_init")
	assert.Contains(t, lines[1], "applied")
	assert.Contains(t, lines[2], "pending")
}

func TestConfirmFrom(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, confirmFrom(strings.NewReader("yes\n"), &out, "About to purge."))
	assert.Contains(t, out.String(), "About to purge.")

	err := confirmFrom(strings.NewReader("n\n"), &out, "About to purge.")
	require.Error(t, err)

	err = confirmFrom(strings.NewReader(""), &out, "About to purge.")
	require.Error(t, err)
}

func TestLoadZone(t *testing.T) {
	loc, err := loadZone("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = loadZone("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = loadZone("Not/AZone")
	require.Error(t, err)
}

func TestWantRedis(t *testing.T) {
	assert.False(t, wantRedis(nil))
	assert.True(t, wantRedis(&config.AppConfig{
		Cache: config.CacheConfig{Enabled: true},
		Redis: config.RedisConfig{URI: "localhost:6379"},
	}))
	assert.False(t, wantRedis(&config.AppConfig{
		Cache: config.CacheConfig{Enabled: false},
		Redis: config.RedisConfig{URI: "localhost:6379"},
	}))
	assert.False(t, wantRedis(&config.AppConfig{
		Cache: config.CacheConfig{Enabled: true},
		Redis: config.RedisConfig{UseSentinel: true},
	}))
}
