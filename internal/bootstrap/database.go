package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/sla-summary/config"
	"github.com/target/sla-summary/internal/data"
)

const connectTimeout = 5 * time.Second

// ConnectDB opens the Postgres pool and pings it before returning.
func ConnectDB(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyPoolLimits(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		return nil, closeAfter(fmt.Errorf("ping database: %w", err), "database", db)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database connected",
			"host", cfg.Host,
			"database", cfg.Name,
			"url_override", strings.TrimSpace(cfg.URL) != "",
		)
	}
	return db, nil
}

func applyPoolLimits(db *sql.DB, cfg config.DBConfig) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	idle := cfg.MaxIdleConns
	if idle <= 0 || idle > maxOpen {
		idle = max(maxOpen/5, 1)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(idle)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// redisTopology names how a RedisConfig is reached.
type redisTopology string

const (
	topologyDirect   redisTopology = "direct"
	topologySentinel redisTopology = "sentinel"
	topologyCluster  redisTopology = "cluster"
)

// ConnectRedis builds the client for the configured topology and pings it.
//
//nolint:ireturn // the concrete client type depends on the topology.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	topology, opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	switch topology {
	case topologyCluster:
		client = redis.NewClusterClient(opts.Cluster())
	case topologySentinel:
		client = redis.NewFailoverClient(opts.Failover())
	default:
		client = redis.NewClient(opts.Simple())
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		return nil, closeAfter(fmt.Errorf("ping redis: %w", err), "redis client", client)
	}

	if logger != nil {
		// Addrs never carry credentials; those live in the option fields.
		logger.InfoContext(ctx, "redis connected",
			"topology", string(topology),
			"addrs", strings.Join(opts.Addrs, ","),
		)
	}
	return client, nil
}

// redisOptions resolves cfg into universal options plus the topology that
// decides which constructor consumes them.
func redisOptions(cfg config.RedisConfig) (redisTopology, *redis.UniversalOptions, error) {
	if cfg.UseCluster && cfg.UseSentinel {
		return "", nil, errors.New("redis cluster and sentinel modes are mutually exclusive")
	}

	opts := &redis.UniversalOptions{Password: cfg.Password, DB: cfg.DB}

	switch {
	case cfg.UseSentinel:
		opts.Addrs = config.NodeList(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		opts.MasterName = cfg.SentinelMasterName
		opts.SentinelPassword = cfg.SentinelPassword
		return topologySentinel, opts, nil

	case cfg.UseCluster:
		opts.DB = 0
		opts.Addrs = config.NodeList(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			if err := mergeRedisURI(opts, cfg.URI); err != nil {
				return "", nil, fmt.Errorf("redis cluster fallback: %w", err)
			}
			opts.DB = 0
		}
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis cluster configuration requires at least one address")
		}
		return topologyCluster, opts, nil

	default:
		if err := mergeRedisURI(opts, cfg.URI); err != nil {
			return "", nil, err
		}
		if len(opts.Addrs) == 0 {
			return "", nil, errors.New("redis direct configuration requires a URI")
		}
		return topologyDirect, opts, nil
	}
}

// mergeRedisURI folds a host:port or redis URL into opts. Credentials and
// database in the URL win over the separately configured ones.
func mergeRedisURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func closeAfter(err error, name string, c interface{ Close() error }) error {
	if cerr := c.Close(); cerr != nil {
		return errors.Join(err, fmt.Errorf("close %s: %w", name, cerr))
	}
	return err
}

// RunMigrations applies the embedded schema migrations and index specs.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}

	return nil
}
