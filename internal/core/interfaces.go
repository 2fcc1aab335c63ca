// Package core defines the ports between the SLA summary service layer and its adapters.
package core

import (
	"context"
	"time"

	"github.com/target/sla-summary/internal/domain/model"
)

// SLASummaryRepository defines the interface for SLA summary persistence.
type SLASummaryRepository interface {
	// Create inserts a new summary. A duplicate job id is a conflict.
	Create(ctx context.Context, s *model.SLASummary) error
	// Upsert inserts or fully replaces the summary keyed by its job id.
	Upsert(ctx context.Context, s *model.SLASummary) error
	// Update replaces an existing summary and reports not found when it is missing.
	Update(ctx context.Context, s *model.SLASummary) error
	// GetByJobID returns the summary for a job.
	GetByJobID(ctx context.Context, jobID string) (*model.SLASummary, error)
	// List returns summaries matching the filters, most recently modified first.
	List(ctx context.Context, opts model.SLASummaryListOptions) ([]*model.SLASummary, error)
	// MarkProcessed sets the processing stage marker and bumps last_modified.
	MarkProcessed(ctx context.Context, jobID string, stage int8) error
	// Delete removes a summary. Returns true if a row was deleted.
	Delete(ctx context.Context, jobID string) (bool, error)
}

// DeleteModifiedBeforeParams groups parameters for the retention purge.
type DeleteModifiedBeforeParams struct {
	MaxAge    time.Duration
	BatchSize int
}

// RetentionRepository defines the interface for summary retention cleanup.
type RetentionRepository interface {
	// DeleteModifiedBefore deletes up to BatchSize summaries whose last_modified
	// is older than MaxAge and returns the number deleted.
	DeleteModifiedBefore(ctx context.Context, params DeleteModifiedBeforeParams) (int64, error)
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}
