package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/data/pgxutil"
)

// retentionLock serialises purges across service instances.
var retentionLock = pgxutil.AdvisoryLockKey{Major: 1100, Minor: 1}

// DeleteModifiedBefore deletes up to BatchSize summaries whose last_modified is
// older than MaxAge. Rows that were never stamped are left alone. A concurrent
// purge holding the advisory lock makes this call a no-op returning 0.
func (r *SLASummaryRepo) DeleteModifiedBefore(ctx context.Context, params core.DeleteModifiedBeforeParams) (int64, error) {
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}
	if params.MaxAge <= 0 {
		return 0, errors.New("max age must be greater than zero")
	}

	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			locked, err := pgxutil.TryAdvisoryXactLock(ctx, tx, retentionLock)
			if err != nil {
				return err
			}
			if !locked {
				r.logger.DebugContext(ctx, "retention purge already running elsewhere")
				return nil
			}

			cutoff := storageNow(r.timeProvider).Add(-params.MaxAge)

			res, err := tx.ExecContext(ctx, `
				DELETE FROM sla_summary
				WHERE job_id IN (
					SELECT job_id FROM sla_summary
					WHERE last_modified < $1
					ORDER BY last_modified
					LIMIT $2
				)
			`, cutoff, params.BatchSize)
			if err != nil {
				return fmt.Errorf("delete stale sla summaries: %w", err)
			}

			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}
