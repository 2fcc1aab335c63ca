package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/sla-summary/config"
	"github.com/target/sla-summary/internal/bootstrap"
)

// connectInfra opens Postgres and, when the summary cache is enabled and a
// Redis target is configured, Redis. A nil client means writes skip cache
// invalidation.
//
//nolint:ireturn // the concrete redis client depends on the configured topology.
func connectInfra(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) (*sql.DB, redis.UniversalClient, error) {
	db, err := bootstrap.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect db: %w", err)
	}

	if !wantRedis(cfg) {
		if cfg.Cache.Enabled {
			logger.Info("no redis configuration detected; cache invalidation disabled")
		}
		return db, nil, nil
	}

	client, err := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		err = fmt.Errorf("connect redis: %w", err)
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close db: %w", cerr))
		}
		return nil, nil, err
	}
	return db, client, nil
}

func wantRedis(cfg *config.AppConfig) bool {
	return cfg != nil && cfg.Cache.Enabled && cfg.Redis.Configured()
}

func closeInfra(db *sql.DB, redisClient redis.UniversalClient) error {
	var closeErr error
	if db != nil {
		if err := db.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			closeErr = errors.Join(closeErr, fmt.Errorf("close redis: %w", err))
		}
	}
	return closeErr
}
