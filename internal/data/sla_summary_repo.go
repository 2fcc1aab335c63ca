package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
)

// RepoConfig holds configuration options for the SLA summary repository.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// SLASummaryRepo provides database operations for SLA summary records.
type SLASummaryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var (
	_ core.SLASummaryRepository = (*SLASummaryRepo)(nil)
	_ core.RetentionRepository  = (*SLASummaryRepo)(nil)
)

// NewSLASummaryRepo creates a new SLASummaryRepo with the given database connection and configuration.
func NewSLASummaryRepo(db *sql.DB, cfg RepoConfig) *SLASummaryRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SLASummaryRepo{
		DB:           db,
		timeProvider: tp,
		logger:       logger.With("component", "sla_summary_repo"),
	}
}

const slaSummaryPlaceholders = `$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16`

// Create inserts a new summary. A duplicate job id surfaces as a conflict error.
func (r *SLASummaryRepo) Create(ctx context.Context, s *model.SLASummary) error {
	if err := validateForWrite(s); err != nil {
		return err
	}
	row := rowFromSummary(s)
	query := `INSERT INTO sla_summary (` + slaSummaryColumns + `) VALUES (` + slaSummaryPlaceholders + `)`
	if _, err := r.DB.ExecContext(ctx, query, row.args()...); err != nil {
		return apperrors.MapDBError(fmt.Errorf("insert sla summary %s: %w", s.JobID, err))
	}
	return nil
}

// Upsert inserts the summary or replaces every column of the existing row.
func (r *SLASummaryRepo) Upsert(ctx context.Context, s *model.SLASummary) error {
	if err := validateForWrite(s); err != nil {
		return err
	}
	row := rowFromSummary(s)
	query := `INSERT INTO sla_summary (` + slaSummaryColumns + `) VALUES (` + slaSummaryPlaceholders + `)
		ON CONFLICT (job_id) DO UPDATE SET
			user_name = EXCLUDED.user_name,
			app_name = EXCLUDED.app_name,
			parent_id = EXCLUDED.parent_id,
			nominal_time = EXCLUDED.nominal_time,
			expected_start = EXCLUDED.expected_start,
			expected_end = EXCLUDED.expected_end,
			expected_duration = EXCLUDED.expected_duration,
			actual_start = EXCLUDED.actual_start,
			actual_end = EXCLUDED.actual_end,
			actual_duration = EXCLUDED.actual_duration,
			job_status = EXCLUDED.job_status,
			event_status = EXCLUDED.event_status,
			sla_status = EXCLUDED.sla_status,
			sla_processed = EXCLUDED.sla_processed,
			last_modified = EXCLUDED.last_modified`
	if _, err := r.DB.ExecContext(ctx, query, row.args()...); err != nil {
		return apperrors.MapDBError(fmt.Errorf("upsert sla summary %s: %w", s.JobID, err))
	}
	return nil
}

// Update replaces an existing summary.
func (r *SLASummaryRepo) Update(ctx context.Context, s *model.SLASummary) error {
	if err := validateForWrite(s); err != nil {
		return err
	}
	row := rowFromSummary(s)
	query := `UPDATE sla_summary SET
			user_name = $2, app_name = $3, parent_id = $4, nominal_time = $5,
			expected_start = $6, expected_end = $7, expected_duration = $8,
			actual_start = $9, actual_end = $10, actual_duration = $11,
			job_status = $12, event_status = $13, sla_status = $14,
			sla_processed = $15, last_modified = $16
		WHERE job_id = $1`
	res, err := r.DB.ExecContext(ctx, query, row.args()...)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("update sla summary %s: %w", s.JobID, err))
	}
	return r.requireAffected(res, s.JobID)
}

// GetByJobID fetches a summary using the GET_SLA_SUMMARY named query.
func (r *SLASummaryRepo) GetByJobID(ctx context.Context, jobID string) (*model.SLASummary, error) {
	if jobID == "" {
		return nil, apperrors.ValidationField("job_id", "job id is required")
	}
	query, _ := NamedQuery(QueryGetSLASummary)

	var row slaSummaryRow
	if err := r.DB.QueryRowContext(ctx, query, jobID).Scan(row.scanDest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("sla summary for job %s not found", jobID)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get sla summary %s: %w", jobID, err))
	}

	s, err := row.toSummary()
	if err != nil {
		r.logger.ErrorContext(ctx, "stored sla summary has invalid status", "job_id", jobID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode sla summary")
	}
	return s, nil
}

// MarkProcessed sets the processing stage marker and bumps last_modified.
func (r *SLASummaryRepo) MarkProcessed(ctx context.Context, jobID string, stage int8) error {
	if jobID == "" {
		return apperrors.ValidationField("job_id", "job id is required")
	}
	if stage < 0 {
		return apperrors.ValidationField("sla_processed", "sla processed must be non-negative")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sla_summary SET sla_processed = $2, last_modified = $3 WHERE job_id = $1`,
		jobID, int16(stage), storageNow(r.timeProvider),
	)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("mark sla summary %s processed: %w", jobID, err))
	}
	return r.requireAffected(res, jobID)
}

// Delete removes a summary. Returns true if a row was deleted.
func (r *SLASummaryRepo) Delete(ctx context.Context, jobID string) (bool, error) {
	if jobID == "" {
		return false, apperrors.ValidationField("job_id", "job id is required")
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sla_summary WHERE job_id = $1`, jobID)
	if err != nil {
		return false, apperrors.MapDBError(fmt.Errorf("delete sla summary %s: %w", jobID, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *SLASummaryRepo) requireAffected(res sql.Result, jobID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFoundf("sla summary for job %s not found", jobID)
	}
	return nil
}

func validateForWrite(s *model.SLASummary) error {
	if s == nil {
		return apperrors.Validation("sla summary is required")
	}
	if err := s.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid sla summary")
	}
	return nil
}
