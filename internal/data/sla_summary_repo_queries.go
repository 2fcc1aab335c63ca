package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/sla-summary/internal/data/database"
	"github.com/target/sla-summary/internal/data/pgxutil"
	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// buildSLASummaryListQuery renders the filtered listing query for opts.
func buildSLASummaryListQuery(opts model.SLASummaryListOptions) (string, []any) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(opts.Offset, 0)

	cols := strings.Split(slaSummaryColumns, ",")
	qopts := []database.ListQueryOption{database.WithColumns(cols...)}

	if opts.AppName != nil && *opts.AppName != "" {
		qopts = append(qopts, database.WithCondition(database.WhereCond("app_name", database.Equal, *opts.AppName)))
	}
	if opts.ParentID != nil && *opts.ParentID != "" {
		qopts = append(qopts, database.WithCondition(database.WhereCond("parent_id", database.Equal, *opts.ParentID)))
	}
	if nt := ToStorageTime(opts.NominalFrom); nt.Valid {
		qopts = append(qopts, database.WithCondition(database.WhereCond("nominal_time", database.GreaterThanOrEqual, nt.Time)))
	}
	if nt := ToStorageTime(opts.NominalTo); nt.Valid {
		qopts = append(qopts, database.WithCondition(database.WhereCond("nominal_time", database.LessThan, nt.Time)))
	}
	if opts.SLAProcessed != nil {
		qopts = append(qopts, database.WithCondition(
			database.WhereCond("sla_processed", database.Equal, int16(*opts.SLAProcessed))))
	}
	if nt := ToStorageTime(opts.ModifiedSince); nt.Valid {
		qopts = append(qopts, database.WithCondition(database.WhereCond("last_modified", database.GreaterThanOrEqual, nt.Time)))
	}

	qopts = append(qopts,
		database.WithOrderByNullsLast("last_modified", "DESC"),
		database.WithOrderBy("job_id", "ASC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	)

	return database.BuildListQuery(database.NewListQueryOptions(SLASummarySchema.Table, qopts...))
}

// List returns summaries matching the filters, most recently modified first.
func (r *SLASummaryRepo) List(ctx context.Context, opts model.SLASummaryListOptions) ([]*model.SLASummary, error) {
	if opts.NominalFrom != nil && opts.NominalTo != nil && opts.NominalTo.Before(*opts.NominalFrom) {
		return nil, apperrors.ValidationField("nominal_to", "nominal_to must not be before nominal_from")
	}
	query, args := buildSLASummaryListQuery(opts)

	var rows []*slaSummaryRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		res, err := conn.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query sla summaries: %w", err)
		}
		defer res.Close()

		vals, err := pgx.CollectRows(res, pgx.RowToAddrOfStructByName[slaSummaryRow])
		if err != nil {
			return fmt.Errorf("collect sla summaries: %w", err)
		}
		rows = vals
		return nil
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]*model.SLASummary, 0, len(rows))
	for _, row := range rows {
		s, err := row.toSummary()
		if err != nil {
			r.logger.ErrorContext(ctx, "stored sla summary has invalid status", "job_id", row.JobID, "error", err)
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode sla summary")
		}
		out = append(out, s)
	}
	return out, nil
}
