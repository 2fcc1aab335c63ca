// Package testutil provides opt-in Postgres and Redis fixtures plus record
// builders for tests. Integration fixtures skip unless their environment
// variables point at live services.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/sla-summary/internal/migrate"
)

const (
	envTestDBURL     = "TEST_DB_URL"
	envTestRedisAddr = "TEST_REDIS_ADDR"
	envTestRedisDB   = "TEST_REDIS_DB"
	envRequireInfra  = "TEST_REQUIRE_INFRA"
)

// TestDBURL returns the Postgres DSN for integration tests, or "" when unset.
func TestDBURL() string {
	return strings.TrimSpace(os.Getenv(envTestDBURL))
}

// SkipIfNoTestDB skips t unless TEST_DB_URL is set and answers a ping.
// With TEST_REQUIRE_INFRA set, a missing database fails the test instead.
func SkipIfNoTestDB(t testing.TB) {
	t.Helper()
	dsn := TestDBURL()
	if dsn == "" {
		skipOrFail(t, envTestDBURL+" not set")
		return
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		skipOrFail(t, "open test database: "+err.Error())
		return
	}
	defer closeAndLog(t, "test db", db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		skipOrFail(t, "test database not reachable: "+err.Error())
	}
}

// WithAutoDB runs fn against a fresh schema holding the migrated tables. The
// schema is dropped when the test finishes.
func WithAutoDB(t testing.TB, fn func(*sql.DB)) {
	t.Helper()
	SkipIfNoTestDB(t)

	dsn := TestDBURL()
	admin, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open admin db: %v", err)
	}
	t.Cleanup(func() { closeAndLog(t, "admin db", admin) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := schemaName()
	if _, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Cleanup(func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if _, derr := admin.ExecContext(dctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); derr != nil {
			t.Logf("drop schema %s: %v", schema, derr)
		}
	})

	scoped, err := withSearchPath(dsn, schema)
	if err != nil {
		t.Fatalf("scope dsn to %s: %v", schema, err)
	}
	db, err := sql.Open("pgx", scoped)
	if err != nil {
		t.Fatalf("open schema db: %v", err)
	}
	// Registered after the drop so it runs first.
	t.Cleanup(func() { closeAndLog(t, "schema db", db) })

	if err = migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate schema %s: %v", schema, err)
	}
	fn(db)
}

func withSearchPath(dsn, schema string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func schemaName() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "t_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return "t_" + hex.EncodeToString(b)
}

// SetupTestRedis returns a client on TEST_REDIS_ADDR with its database flushed.
// TEST_REDIS_DB selects the logical database (default 1).
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv(envTestRedisAddr))
	if addr == "" {
		skipOrFail(t, envTestRedisAddr+" not set")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: testRedisDB()})
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		skipOrFail(t, "redis not reachable at "+addr+": "+err.Error())
		return nil
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test redis: %v", err)
	}
	return client
}

func testRedisDB() int {
	if n, err := strconv.Atoi(os.Getenv(envTestRedisDB)); err == nil && n >= 0 {
		return n
	}
	return 1
}

func skipOrFail(t testing.TB, reason string) {
	t.Helper()
	if envBool(envRequireInfra) {
		t.Fatal(reason)
	}
	t.Skip(reason)
}

func closeAndLog(t testing.TB, name string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		t.Logf("close %s: %v", name, err)
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time {
	return &t
}
