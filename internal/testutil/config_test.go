package testutil

import (
	"testing"
	"time"
)

func TestWithSearchPath(t *testing.T) {
	got, err := withSearchPath("postgres://u:p@db:5432/sla_summary?sslmode=disable", "t_abcd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "postgres://u:p@db:5432/sla_summary?search_path=t_abcd&sslmode=disable" {
		t.Errorf("unexpected dsn %q", got)
	}
}

func TestSchemaName(t *testing.T) {
	a, b := schemaName(), schemaName()
	if len(a) != len("t_")+8 {
		t.Errorf("unexpected schema name %q", a)
	}
	if a == b {
		t.Errorf("expected distinct schema names, got %q twice", a)
	}
}

func TestTestRedisDB(t *testing.T) {
	t.Setenv("TEST_REDIS_DB", "")
	if got := testRedisDB(); got != 1 {
		t.Errorf("expected default DB 1, got %d", got)
	}
	t.Setenv("TEST_REDIS_DB", "4")
	if got := testRedisDB(); got != 4 {
		t.Errorf("expected DB 4, got %d", got)
	}
	t.Setenv("TEST_REDIS_DB", "-2")
	if got := testRedisDB(); got != 1 {
		t.Errorf("expected fallback DB 1, got %d", got)
	}
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " y "} {
		t.Setenv("TEST_FLAG", v)
		if !envBool("TEST_FLAG") {
			t.Errorf("expected %q to be truthy", v)
		}
	}
	t.Setenv("TEST_FLAG", "no")
	if envBool("TEST_FLAG") {
		t.Error("expected no to be false")
	}
}

func TestSLASummaryBuilder(t *testing.T) {
	s := NewSLASummary("wf-1").
		WithApp("billing", "alice").
		WithExpectedWindow(TestTime(), 3600000).
		WithActuals(TestTime(), TestTime().Add(90*time.Minute)).
		Build()

	if s.JobID != "wf-1" || s.AppName != "billing" || s.User != "alice" {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.ActualDuration != 90*60*1000 {
		t.Errorf("expected actual duration 5400000, got %d", s.ActualDuration)
	}
	if s.ExpectedEnd == nil || !s.ExpectedEnd.Equal(TestTime().Add(time.Hour)) {
		t.Errorf("expected end derived from start and duration, got %v", s.ExpectedEnd)
	}
}
