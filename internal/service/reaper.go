package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/target/sla-summary/config"
	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/observability/metrics"
	"github.com/target/sla-summary/internal/observability/statsd"
)

// ReaperServiceOptions groups dependencies for ReaperService.
type ReaperServiceOptions struct {
	Repo    core.RetentionRepository // Required
	Config  config.ReaperConfig      // Required: Interval must be positive
	Logger  *slog.Logger             // Optional
	Metrics statsd.Sink              // Optional
}

// ReaperService deletes SLA summaries whose last modification is older than
// the retention window. Deletes run in batches, and the repository holds an
// advisory lock per batch so concurrent replicas do not contend.
type ReaperService struct {
	repo    core.RetentionRepository
	cfg     config.ReaperConfig
	log     *slog.Logger
	metrics statsd.Sink
}

// PurgeResult summarizes one purge pass.
type PurgeResult struct {
	Deleted  int64
	Batches  int
	Duration time.Duration
}

// NewReaperService validates opts and returns a ready service.
func NewReaperService(opts ReaperServiceOptions) (*ReaperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("RetentionRepository is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.New("reaper interval must be positive")
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ReaperService{
		repo:    opts.Repo,
		cfg:     opts.Config,
		log:     log.With("component", "reaper_service"),
		metrics: opts.Metrics,
	}, nil
}

// Run purges once per interval until ctx ends. Each wait is jittered by up
// to a tenth of the interval so replicas started together drift apart.
// Cancellation returns nil; a deadline returns ctx.Err().
func (s *ReaperService) Run(ctx context.Context) error {
	s.log.InfoContext(ctx, "starting reaper service",
		"interval", s.cfg.Interval,
		"summary_max_age", s.cfg.SummaryMaxAge,
		"batch_size", s.cfg.BatchSize,
	)

	timer := time.NewTimer(s.jitter())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "reaper service stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := s.PurgeOnce(ctx); err != nil {
			if isContextCancellation(err) {
				s.log.DebugContext(ctx, "purge interrupted", "error", err)
			} else {
				s.log.ErrorContext(ctx, "purge failed", "error", err)
			}
		}
		timer.Reset(s.cfg.Interval + s.jitter())
	}
}

func (s *ReaperService) jitter() time.Duration {
	span := int64(s.cfg.Interval / 10)
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(span)) // #nosec G404 - scheduling jitter only
}

// PurgeOnce runs one pass with the configured retention window and reports it
// to the metrics sink. On error the result still counts what was deleted.
func (s *ReaperService) PurgeOnce(ctx context.Context) (PurgeResult, error) {
	res, err := s.purge(ctx, s.cfg.SummaryMaxAge)

	metrics.EmitRetentionPurge(s.metrics, metrics.RetentionMetric{
		Deleted:  res.Deleted,
		Duration: res.Duration,
		Err:      suppressContextCancellation(err),
	})

	if err != nil && !isContextCancellation(err) {
		return res, fmt.Errorf("purge sla summaries: %w", err)
	}
	return res, err
}

// PurgeOlderThan runs one pass with an explicit retention window. It is the
// operator path and does not emit metrics.
func (s *ReaperService) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (PurgeResult, error) {
	if maxAge <= 0 {
		return PurgeResult{}, errors.New("max age must be positive")
	}
	return s.purge(ctx, maxAge)
}

// purge deletes batch after batch until one comes back empty.
func (s *ReaperService) purge(ctx context.Context, maxAge time.Duration) (PurgeResult, error) {
	start := time.Now()
	params := core.DeleteModifiedBeforeParams{MaxAge: maxAge, BatchSize: s.cfg.BatchSize}

	var res PurgeResult

	for {
		n, err := s.repo.DeleteModifiedBefore(ctx, params)
		if err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		res.Batches++
		res.Deleted += n
		if n == 0 {
			break
		}
		if err = ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
	}

	res.Duration = time.Since(start)
	if res.Deleted > 0 {
		s.log.InfoContext(ctx, "deleted expired sla summaries",
			"count", res.Deleted,
			"batches", res.Batches,
			"max_age", maxAge,
		)
	}
	return res, nil
}

func isContextCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
