package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/target/sla-summary/internal/migrate"
)

// RunMigrations applies the embedded SQL migrations and then the index metadata
// of every table this package owns.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := migrate.Run(ctx, db); err != nil {
		return err
	}
	if err := EnsureSchemaIndexes(ctx, db, SLASummarySchema); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
