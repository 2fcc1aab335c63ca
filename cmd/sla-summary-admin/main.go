package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/target/sla-summary/config"
	"github.com/target/sla-summary/internal/bootstrap"
	"github.com/target/sla-summary/internal/data"
	"github.com/target/sla-summary/internal/migrate"
	"github.com/target/sla-summary/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultCommandTimeout   = 30 * time.Second
	defaultPurgeTimeout     = 30 * time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	bootstrap.ApplyLogLevel(&cfg)

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"migrate-status": {
			name:        "migrate-status",
			description: "List embedded migrations and whether each has been applied",
			run:         runMigrateStatus,
		},
		"get": {
			name:        "get",
			description: "Print one SLA summary as JSON, optionally filtered by a JMESPath query",
			run:         runGet,
		},
		"mark-processed": {
			name:        "mark-processed",
			description: "Set the processing stage of an SLA summary",
			run:         runMarkProcessed,
		},
		"purge": {
			name:        "purge",
			description: "Delete SLA summaries not modified within a retention window",
			run:         runPurge,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: sla-summary-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, name := range commandNames() {
		c := commands()[name]
		if err := writef(os.Stdout, "  %-18s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type getOptions struct {
	JobID   string
	Query   string
	TZ      string
	Timeout time.Duration
}

type markProcessedOptions struct {
	JobID   string
	Stage   int
	Timeout time.Duration
}

type purgeOptions struct {
	OlderThan time.Duration
	BatchSize int
	Timeout   time.Duration
	Yes       bool
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}
		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runMigrateStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		versions, verr := migrate.Versions()
		if verr != nil {
			return verr
		}
		applied, aerr := migrate.Applied(ctx, db)
		if aerr != nil {
			return aerr
		}
		return printMigrationStatus(os.Stdout, versions, applied)
	})
}

func runGet(cmdCtx *commandContext, args []string) error {
	opts, err := parseGetFlags(args)
	if err != nil {
		return err
	}
	loc, err := loadZone(opts.TZ)
	if err != nil {
		return err
	}

	return withSummaryService(cmdCtx, opts.Timeout, func(ctx context.Context, svc *service.SLASummaryService) error {
		summary, gerr := svc.Get(ctx, opts.JobID)
		if gerr != nil {
			return fmt.Errorf("get summary %s: %w", opts.JobID, gerr)
		}
		return printSummary(os.Stdout, summary.JSONObject(loc), opts.Query)
	})
}

func runMarkProcessed(cmdCtx *commandContext, args []string) error {
	opts, err := parseMarkProcessedFlags(args)
	if err != nil {
		return err
	}

	return withSummaryService(cmdCtx, opts.Timeout, func(ctx context.Context, svc *service.SLASummaryService) error {
		if merr := svc.MarkProcessed(ctx, opts.JobID, int8(opts.Stage)); merr != nil { // #nosec G115 - range checked in parseMarkProcessedFlags
			return fmt.Errorf("mark processed %s: %w", opts.JobID, merr)
		}
		return writef(os.Stdout, "Marked %s processed at stage %d\n", opts.JobID, opts.Stage)
	})
}

func runPurge(cmdCtx *commandContext, args []string) error {
	opts, err := parsePurgeFlags(args)
	if err != nil {
		return err
	}
	if err = confirmAction(opts.Yes, fmt.Sprintf(
		"About to delete SLA summaries not modified in the last %s from %s.",
		opts.OlderThan, cmdCtx.Config.Postgres.Host,
	)); err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		reaperCfg := cmdCtx.Config.Reaper
		reaperCfg.BatchSize = opts.BatchSize
		reaper, rerr := service.NewReaperService(service.ReaperServiceOptions{
			Repo:   data.NewSLASummaryRepo(db, data.RepoConfig{Logger: cmdCtx.Logger}),
			Config: reaperCfg,
			Logger: cmdCtx.Logger,
		})
		if rerr != nil {
			return rerr
		}

		res, perr := reaper.PurgeOlderThan(ctx, opts.OlderThan)
		if perr != nil {
			return fmt.Errorf("purge summaries (deleted %d before failure): %w", res.Deleted, perr)
		}
		return writef(os.Stdout, "Deleted %d SLA summaries in %d batches (%s)\n",
			res.Deleted, res.Batches, res.Duration.Round(time.Millisecond))
	})
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parseGetFlags(args []string) (getOptions, error) {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := getOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.Query, "query", "", "JMESPath expression applied to the summary JSON")
	fs.StringVar(&opts.TZ, "tz", "", "IANA time zone used to render timestamps (default UTC)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the lookup")

	jobID, rest := splitJobID(args)
	if err := fs.Parse(rest); err != nil {
		return getOptions{}, err
	}
	opts.JobID = firstNonEmpty(jobID, fs.Arg(0))
	if opts.JobID == "" {
		return getOptions{}, errors.New("job id is required: get <job_id> [flags]")
	}
	if opts.Timeout <= 0 {
		return getOptions{}, errors.New("--timeout must be greater than zero")
	}
	if err := validateQuery(opts.Query); err != nil {
		return getOptions{}, err
	}
	return opts, nil
}

func parseMarkProcessedFlags(args []string) (markProcessedOptions, error) {
	fs := flag.NewFlagSet("mark-processed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := markProcessedOptions{Stage: -1, Timeout: defaultCommandTimeout}
	fs.IntVar(&opts.Stage, "stage", -1, "Processing stage to record (0-127)")
	fs.DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Maximum duration for the update")

	jobID, rest := splitJobID(args)
	if err := fs.Parse(rest); err != nil {
		return markProcessedOptions{}, err
	}
	opts.JobID = firstNonEmpty(jobID, fs.Arg(0))
	if opts.JobID == "" {
		return markProcessedOptions{}, errors.New("job id is required: mark-processed <job_id> --stage N")
	}
	if opts.Stage < 0 || opts.Stage > 127 {
		return markProcessedOptions{}, errors.New("--stage must be between 0 and 127")
	}
	if opts.Timeout <= 0 {
		return markProcessedOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func parsePurgeFlags(args []string) (purgeOptions, error) {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := purgeOptions{BatchSize: 1000, Timeout: defaultPurgeTimeout}
	fs.DurationVar(&opts.OlderThan, "older-than", 0, "Delete summaries whose last_modified is older than this (e.g. 2160h)")
	fs.IntVar(&opts.BatchSize, "batch-size", 1000, "Rows deleted per statement")
	fs.DurationVar(&opts.Timeout, "timeout", defaultPurgeTimeout, "Maximum duration for the purge")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return purgeOptions{}, err
	}
	if opts.OlderThan < 24*time.Hour {
		return purgeOptions{}, errors.New("--older-than must be at least 24h")
	}
	if opts.BatchSize <= 0 || opts.BatchSize > 10000 {
		return purgeOptions{}, errors.New("--batch-size must be between 1 and 10000")
	}
	if opts.Timeout <= 0 {
		return purgeOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

// splitJobID pulls a leading positional job id off args so flags may follow it.
func splitJobID(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return strings.TrimSpace(args[0]), args[1:]
	}
	return "", args
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func loadZone(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return loc, nil
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

// withSummaryService builds the summary service against Postgres and, when
// configured, the Redis cache so admin writes invalidate cached entries.
func withSummaryService(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *service.SLASummaryService) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, redisClient, err := connectInfra(ctx, cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, redisClient); cerr != nil {
			cmdCtx.Logger.Warn("close infrastructure failed", "error", cerr)
		}
	}()

	cacheOpts := service.SLASummaryCacheOptions{
		TTL:       cmdCtx.Config.Cache.SummaryTTL,
		KeyPrefix: cmdCtx.Config.Cache.KeyPrefix,
	}
	if redisClient != nil {
		cacheOpts.Repo = data.NewRedisCacheRepo(redisClient)
	}

	svc, err := service.NewSLASummaryService(service.SLASummaryServiceOptions{
		Repo:   data.NewSLASummaryRepo(db, data.RepoConfig{Logger: cmdCtx.Logger}),
		Cache:  cacheOpts,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	return f(ctx, svc)
}
