package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/target/sla-summary/config"
	"github.com/target/sla-summary/internal/core"
	"github.com/target/sla-summary/internal/data"
	httpx "github.com/target/sla-summary/internal/http"
	"github.com/target/sla-summary/internal/observability/statsd"
	"github.com/target/sla-summary/internal/service"
)

const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Summaries     *service.SLASummaryService
	Reaper        *service.ReaperService
	Observability ObservabilityContainer
	Readiness     map[string]httpx.ReadinessCheck
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   statsd.Sink
	metricsClient *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Close releases the metrics connection, if any.
func (o ObservabilityContainer) Close() error {
	if o.metricsClient == nil {
		return nil
	}
	return o.metricsClient.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink. A failed or disabled
// StatsD client falls back to a sink that drops everything.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	out := ObservabilityContainer{MetricsSink: statsd.Discard{}, MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return out
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  obsLogger,
	})
	if err != nil {
		obsLogger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.MetricsSink = client
	out.metricsClient = client
	return out
}

// NewServices wires repositories, cache and metrics into the application services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)
	repo := data.NewSLASummaryRepo(deps.DB, data.RepoConfig{Logger: logger})

	readiness := map[string]httpx.ReadinessCheck{}
	if deps.DB != nil {
		readiness["postgres"] = deps.DB.PingContext
	}

	cacheOpts := service.SLASummaryCacheOptions{
		TTL:       cfg.Cache.SummaryTTL,
		KeyPrefix: cfg.Cache.KeyPrefix,
	}
	if cfg.Cache.Enabled && deps.RedisClient != nil {
		cache := data.NewRedisCacheRepo(deps.RedisClient)
		cacheOpts.Repo = cache
		readiness["redis"] = cache.Health
	}

	summaries, err := service.NewSLASummaryService(service.SLASummaryServiceOptions{
		Repo:    repo,
		Cache:   cacheOpts,
		Logger:  logger,
		Metrics: obs.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create sla summary service: %w", err)
	}

	reaper, err := newReaperService(repo, cfg.Reaper, logger, obs.MetricsSink)
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Summaries:     summaries,
		Reaper:        reaper,
		Observability: obs,
		Readiness:     readiness,
	}, nil
}

func newReaperService(
	repo core.RetentionRepository,
	cfg config.ReaperConfig,
	logger *slog.Logger,
	sink statsd.Sink,
) (*service.ReaperService, error) {
	svc, err := service.NewReaperService(service.ReaperServiceOptions{
		Repo:    repo,
		Config:  cfg,
		Logger:  logger,
		Metrics: sink,
	})
	if err != nil {
		return nil, fmt.Errorf("create reaper service: %w", err)
	}
	return svc, nil
}

// ServiceOrchestrationConfig contains dependencies for running services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunServices(ctx, cfg)
}

// RunServices runs the enabled services until ctx is done or one of them fails.
func RunServices(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		g.Go(func() error {
			return serveHTTP(server, logger)
		})
		g.Go(func() error {
			<-gctx.Done()
			return ShutdownHTTPServer(ShutdownConfig{
				Server:  server,
				Timeout: cfg.Config.HTTP.ShutdownTimeout,
				Logger:  logger,
			})
		})
	}

	if enabled[config.ServiceModeReaper] {
		if cfg.Services.Reaper == nil {
			return errors.New("reaper service enabled but not configured")
		}
		g.Go(func() error {
			if err := cfg.Services.Reaper.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("reaper: %w", err)
			}
			logger.Info("reaper stopped")
			return nil
		})
	}

	err = g.Wait()
	if cerr := cfg.Services.Observability.Close(); cerr != nil {
		logger.Warn("close metrics client", "error", cerr)
	}
	return err
}
