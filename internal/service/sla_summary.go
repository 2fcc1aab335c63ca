package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/domain/model"
	apperrors "github.com/target/sla-summary/internal/errors"
	"github.com/target/sla-summary/internal/observability/metrics"
	"github.com/target/sla-summary/internal/observability/statsd"
)

const (
	defaultSummaryCacheTTL    = 5 * time.Minute
	defaultSummaryCachePrefix = "sla:summary:"

	// sharedReadTimeout bounds a read-through load shared by concurrent callers.
	sharedReadTimeout = 10 * time.Second
)

// SLASummaryCacheOptions configures the optional read-through cache.
type SLASummaryCacheOptions struct {
	Repo      core.CacheRepository // Optional: nil disables caching
	TTL       time.Duration
	KeyPrefix string
}

// SLASummaryServiceOptions groups dependencies for SLASummaryService.
type SLASummaryServiceOptions struct {
	Repo    core.SLASummaryRepository // Required: summary repository
	Cache   SLASummaryCacheOptions    // Optional: read-through cache
	Logger  *slog.Logger              // Optional: structured logger
	Metrics statsd.Sink               // Optional: metrics sink (StatsD-compatible)
}

// SLASummaryService owns the lifecycle of SLA summary records: registration
// from calculation state, observed timing, processing stage and removal.
// Reads go through the cache when one is configured and every write
// invalidates the cached copy.
type SLASummaryService struct {
	repo     core.SLASummaryRepository
	cache    core.CacheRepository
	cacheTTL time.Duration
	prefix   string
	logger   *slog.Logger
	metrics  statsd.Sink
	group    singleflight.Group
	gens     writeGenerations
	now      func() time.Time
}

// NewSLASummaryService constructs a new SLASummaryService.
func NewSLASummaryService(opts SLASummaryServiceOptions) (*SLASummaryService, error) {
	if opts.Repo == nil {
		return nil, errors.New("SLASummaryRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "sla_summary_service")

	ttl := opts.Cache.TTL
	if ttl <= 0 {
		ttl = defaultSummaryCacheTTL
	}
	prefix := opts.Cache.KeyPrefix
	if prefix == "" {
		prefix = defaultSummaryCachePrefix
	}

	return &SLASummaryService{
		repo:     opts.Repo,
		cache:    opts.Cache.Repo,
		cacheTTL: ttl,
		prefix:   prefix,
		logger:   logger,
		metrics:  opts.Metrics,
		now:      time.Now,
	}, nil
}

// RegisterFromCalc builds a summary from the calculation status and its
// registration and upserts it. The calculation's last-modified time is kept.
func (s *SLASummaryService) RegisterFromCalc(ctx context.Context, calc *model.SLACalcStatus) (*model.SLASummary, error) {
	start := time.Now()
	summary, err := s.registerFromCalc(ctx, calc)
	s.observe("register", start, err)
	return summary, err
}

func (s *SLASummaryService) registerFromCalc(ctx context.Context, calc *model.SLACalcStatus) (*model.SLASummary, error) {
	summary, err := model.NewSLASummaryFromCalc(calc)
	if err != nil {
		return nil, apperrors.FromDomain(err)
	}
	if err := s.upsert(ctx, summary); err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "registered sla summary", "job_id", summary.JobID)
	return summary, nil
}

// Get returns the summary for jobID, serving from cache when possible.
// Concurrent misses for the same job share a single repository read.
func (s *SLASummaryService) Get(ctx context.Context, jobID string) (*model.SLASummary, error) {
	start := time.Now()
	summary, err := s.get(ctx, jobID)
	s.observe("get", start, err)
	return summary, err
}

func (s *SLASummaryService) get(ctx context.Context, jobID string) (*model.SLASummary, error) {
	if jobID == "" {
		return nil, apperrors.ValidationField("job_id", "job id is required")
	}

	if cached := s.readCache(ctx, jobID); cached != nil {
		return cached, nil
	}

	ch := s.group.DoChan(jobID, func() (any, error) {
		return s.load(ctx, jobID)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, contextError(res.Err)
	}
	// Callers sharing a flight must not share the record.
	summary, ok := res.Val.(*model.SLASummary)
	if !ok {
		return nil, apperrors.Wrap(errors.New("unexpected singleflight result"), apperrors.ErrCodeInternal, "get sla summary")
	}
	return summary.Clone(), nil
}

// load reads jobID for every caller in a flight. It runs detached from the
// caller that started the flight so one caller leaving does not fail the rest.
func (s *SLASummaryService) load(ctx context.Context, jobID string) (*model.SLASummary, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
	defer cancel()

	gen := s.gens.current(jobID)
	summary, err := s.repo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	s.fillCache(ctx, jobID, summary, gen)
	return summary, nil
}

// List returns summaries matching opts.
func (s *SLASummaryService) List(ctx context.Context, opts model.SLASummaryListOptions) ([]*model.SLASummary, error) {
	start := time.Now()
	out, err := s.repo.List(ctx, opts)
	err = contextError(err)
	s.observe("list", start, err)
	return out, err
}

// Save validates summary, stamps last_modified and upserts it.
func (s *SLASummaryService) Save(ctx context.Context, summary *model.SLASummary) (*model.SLASummary, error) {
	start := time.Now()
	out, err := s.save(ctx, summary)
	s.observe("save", start, err)
	return out, err
}

func (s *SLASummaryService) save(ctx context.Context, summary *model.SLASummary) (*model.SLASummary, error) {
	if summary == nil {
		return nil, apperrors.Validation("sla summary is required")
	}
	out := summary.Clone()
	out.RecomputeActualDuration()
	now := s.stamp()
	out.LastModified = &now
	if err := s.upsert(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordActuals applies observed start and end times to an existing summary.
// A nil time in actuals leaves the stored value unchanged.
func (s *SLASummaryService) RecordActuals(
	ctx context.Context,
	jobID string,
	actuals model.SLASummaryActuals,
) (*model.SLASummary, error) {
	start := time.Now()
	out, err := s.recordActuals(ctx, jobID, actuals)
	s.observe("record_actuals", start, err)
	return out, err
}

func (s *SLASummaryService) recordActuals(
	ctx context.Context,
	jobID string,
	actuals model.SLASummaryActuals,
) (*model.SLASummary, error) {
	if jobID == "" {
		return nil, apperrors.ValidationField("job_id", "job id is required")
	}
	if actuals.ActualStart == nil && actuals.ActualEnd == nil {
		return nil, apperrors.Validation("actual_start or actual_end is required")
	}

	summary, err := s.repo.GetByJobID(ctx, jobID)
	if err != nil {
		return nil, contextError(err)
	}
	if actuals.ActualStart != nil {
		summary.SetActualStart(actuals.ActualStart)
	}
	if actuals.ActualEnd != nil {
		summary.SetActualEnd(actuals.ActualEnd)
	}
	now := s.stamp()
	summary.LastModified = &now

	if err := s.repo.Update(ctx, summary); err != nil {
		return nil, contextError(err)
	}
	s.invalidate(ctx, jobID)
	return summary, nil
}

// MarkProcessed records the processing stage reached for jobID.
func (s *SLASummaryService) MarkProcessed(ctx context.Context, jobID string, stage int8) error {
	start := time.Now()
	err := contextError(s.repo.MarkProcessed(ctx, jobID, stage))
	if err == nil {
		s.invalidate(ctx, jobID)
	}
	s.observe("mark_processed", start, err)
	return err
}

// Delete removes the summary for jobID. A missing summary is reported as not found.
func (s *SLASummaryService) Delete(ctx context.Context, jobID string) error {
	start := time.Now()
	err := s.delete(ctx, jobID)
	s.observe("delete", start, err)
	return err
}

func (s *SLASummaryService) delete(ctx context.Context, jobID string) error {
	if jobID == "" {
		return apperrors.ValidationField("job_id", "job id is required")
	}
	deleted, err := s.repo.Delete(ctx, jobID)
	if err != nil {
		return contextError(err)
	}
	s.invalidate(ctx, jobID)
	if !deleted {
		return apperrors.NotFoundf("sla summary %q not found", jobID)
	}
	return nil
}

func (s *SLASummaryService) upsert(ctx context.Context, summary *model.SLASummary) error {
	if err := summary.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid sla summary")
	}
	if err := s.repo.Upsert(ctx, summary); err != nil {
		return contextError(err)
	}
	s.invalidate(ctx, summary.JobID)
	return nil
}

// stamp returns the current time at storage precision.
func (s *SLASummaryService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *SLASummaryService) cacheKey(jobID string) string {
	return s.prefix + jobID
}

// readCache returns the cached record or nil. Cache failures degrade to a miss.
func (s *SLASummaryService) readCache(ctx context.Context, jobID string) *model.SLASummary {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, s.cacheKey(jobID))
	if err != nil {
		s.logger.WarnContext(ctx, "sla summary cache read failed", "job_id", jobID, "error", err)
		metrics.EmitCacheLookup(s.metrics, false)
		return nil
	}
	if data == nil {
		metrics.EmitCacheLookup(s.metrics, false)
		return nil
	}

	var summary model.SLASummary
	if err := json.Unmarshal(data, &summary); err != nil {
		s.logger.WarnContext(ctx, "discarding undecodable cached sla summary", "job_id", jobID, "error", err)
		s.invalidate(ctx, jobID)
		metrics.EmitCacheLookup(s.metrics, false)
		return nil
	}
	metrics.EmitCacheLookup(s.metrics, true)
	return &summary
}

func (s *SLASummaryService) writeCache(ctx context.Context, summary *model.SLASummary) {
	if s.cache == nil || summary == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		s.logger.WarnContext(ctx, "encode sla summary for cache", "job_id", summary.JobID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(summary.JobID), data, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "sla summary cache write failed", "job_id", summary.JobID, "error", err)
	}
}

// fillCache stores a record read while the write generation was gen. A write
// since then skips the fill, and one landing between the check and the set
// evicts what was just stored.
func (s *SLASummaryService) fillCache(ctx context.Context, jobID string, summary *model.SLASummary, gen uint64) {
	if s.cache == nil || s.gens.current(jobID) != gen {
		return
	}
	s.writeCache(ctx, summary)
	if s.gens.current(jobID) != gen {
		s.evict(ctx, jobID)
	}
}

// invalidate marks a write to jobID and drops its cached copy.
func (s *SLASummaryService) invalidate(ctx context.Context, jobID string) {
	s.gens.bump(jobID)
	s.evict(ctx, jobID)
}

func (s *SLASummaryService) evict(ctx context.Context, jobID string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Delete(ctx, s.cacheKey(jobID)); err != nil {
		s.logger.WarnContext(ctx, "sla summary cache invalidation failed", "job_id", jobID, "error", err)
	}
}

func (s *SLASummaryService) observe(op string, start time.Time, err error) {
	metrics.EmitStoreOperation(s.metrics, metrics.StoreMetric{
		Op:       op,
		Duration: time.Since(start),
		Err:      err,
	})
}

// contextError tags context expiry with the matching application error code.
func contextError(err error) error {
	if err == nil || apperrors.GetCode(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "operation timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "operation canceled")
	default:
		return err
	}
}
