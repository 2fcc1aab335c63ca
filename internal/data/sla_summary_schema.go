package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// IndexSpec describes a secondary index on a table.
type IndexSpec struct {
	Name    string
	Columns []string
}

// TableSchema describes a table's key and lookup indexes. The base table DDL
// lives in the embedded migrations; indexes are applied from this metadata.
type TableSchema struct {
	Table      string
	PrimaryKey string
	Indexes    []IndexSpec
}

// SLASummarySchema is the storage metadata for SLA summary rows.
//
//nolint:gochecknoglobals // read-only schema metadata
var SLASummarySchema = TableSchema{
	Table:      "sla_summary",
	PrimaryKey: "job_id",
	Indexes: []IndexSpec{
		{Name: "idx_sla_summary_app_name", Columns: []string{"app_name"}},
		{Name: "idx_sla_summary_parent_id", Columns: []string{"parent_id"}},
		{Name: "idx_sla_summary_nominal_time", Columns: []string{"nominal_time"}},
		{Name: "idx_sla_summary_sla_processed", Columns: []string{"sla_processed"}},
		{Name: "idx_sla_summary_last_modified", Columns: []string{"last_modified"}},
	},
}

// IndexStatements renders idempotent CREATE INDEX statements for the schema.
func (s TableSchema) IndexStatements() []string {
	stmts := make([]string, 0, len(s.Indexes))
	for _, idx := range s.Indexes {
		cols := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			cols[i] = pgx.Identifier{c}.Sanitize()
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			pgx.Identifier{idx.Name}.Sanitize(),
			pgx.Identifier{s.Table}.Sanitize(),
			strings.Join(cols, ", "),
		))
	}
	return stmts
}

// EnsureSchemaIndexes applies the index metadata of each schema.
func EnsureSchemaIndexes(ctx context.Context, db *sql.DB, schemas ...TableSchema) error {
	for _, s := range schemas {
		for _, stmt := range s.IndexStatements() {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("ensure index on %s: %w", s.Table, err)
			}
		}
	}
	return nil
}

// QueryGetSLASummary is the named query that fetches one summary by job id.
const QueryGetSLASummary = "GET_SLA_SUMMARY"

const slaSummaryColumns = `job_id, user_name, app_name, parent_id, nominal_time,
	expected_start, expected_end, expected_duration,
	actual_start, actual_end, actual_duration,
	job_status, event_status, sla_status, sla_processed, last_modified`

//nolint:gochecknoglobals // read-only registry of named queries
var namedQueries = map[string]string{
	QueryGetSLASummary: `SELECT ` + slaSummaryColumns + ` FROM sla_summary WHERE job_id = $1`,
}

// NamedQuery returns the SQL registered under name.
func NamedQuery(name string) (string, bool) {
	q, ok := namedQueries[name]
	return q, ok
}
