// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// posaudit is the POS audit and activity logging service: buffered log
// pipelines over SQLite, a realtime inventory feed, retention sweeps and a
// read-only reporting API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/posaudit-go/internal/cache"
	"github.com/olegiv/posaudit-go/internal/config"
	"github.com/olegiv/posaudit-go/internal/handler"
	"github.com/olegiv/posaudit-go/internal/logging"
	"github.com/olegiv/posaudit-go/internal/logwriter"
	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/realtime"
	"github.com/olegiv/posaudit-go/internal/report"
	"github.com/olegiv/posaudit-go/internal/scheduler"
	"github.com/olegiv/posaudit-go/internal/service"
	"github.com/olegiv/posaudit-go/internal/store"
	"github.com/olegiv/posaudit-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "posaudit - POS audit and activity logging service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  POSAUDIT_DB_PATH       SQLite database path (default: ./data/posaudit.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  POSAUDIT_SERVER_PORT   Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  POSAUDIT_ENV           Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  POSAUDIT_REDIS_URL     Redis URL for caching and the inventory feed (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		_, _ = fmt.Printf("posaudit %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	version.Version = appVersion

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	baseHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	// The pipelines log through the plain handler only; routing their own
	// errors back into the activity queue would loop on store failure.
	pipelineLogger := slog.New(baseHandler)

	// Database
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	queries := store.New(db)

	// Buffered writers, one per pipeline
	auditWriter := logwriter.New("audit",
		func(ctx context.Context, entry model.AuditLog) error {
			_, err := queries.InsertAuditLog(ctx, entry)
			return err
		},
		func(entry model.AuditLog) bool { return entry.Severity == model.SeverityCritical },
		logwriter.Config{
			FlushInterval: cfg.AuditFlushInterval(),
			BatchSize:     cfg.AuditBatchSize,
			QueueCapacity: cfg.QueueCapacity,
		},
		pipelineLogger)

	activityWriter := logwriter.New("activity",
		func(ctx context.Context, entry model.ActivityLog) error {
			_, err := queries.InsertActivityLog(ctx, entry)
			return err
		},
		func(entry model.ActivityLog) bool { return entry.Severity == model.SeverityCritical },
		logwriter.Config{
			FlushInterval: cfg.ActivityFlushInterval(),
			BatchSize:     cfg.ActivityBatchSize,
			QueueCapacity: cfg.QueueCapacity,
		},
		pipelineLogger)

	auditWriter.Start()
	activityWriter.Start()
	// Drain both queues on the way out, audit last so forwarded copies of
	// late activity events still land.
	defer auditWriter.Close()
	defer activityWriter.Close()

	// Application logger: terminal output plus WARN+ into the activity pipeline
	logger := slog.New(logging.NewActivityLogHandler(baseHandler, activityWriter, cfg.CompanyID))
	slog.SetDefault(logger)

	// Typed logging surface; critical activity kinds cross into the audit trail
	forwarder := logwriter.NewForwarder(auditWriter, pipelineLogger)
	activitySvc := service.NewActivityService(activityWriter, forwarder, pipelineLogger)
	auditSvc := service.NewAuditService(auditWriter, pipelineLogger)

	// Report engine with optional Redis-backed statistics cache
	reportCache, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() { _ = reportCache.Close() }()

	engine := report.NewEngine(db, reportCache, logger)

	// Realtime inventory feed (requires Redis)
	var realtimeSvc *realtime.Service
	if cfg.UseRedis() {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parsing redis URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()

		realtimeSvc = realtime.NewService(realtime.NewRegistry(logger), rdb, queries, cfg.InventoryChannel, logger)
		startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := realtimeSvc.Start(startCtx); err != nil {
			cancel()
			return fmt.Errorf("starting realtime service: %w", err)
		}
		cancel()
		defer realtimeSvc.Stop()
	} else {
		logger.Info("realtime inventory feed disabled, no redis URL configured")
	}

	// Retention sweeps
	sched := scheduler.New(engine, queries, scheduler.Retention{
		ActivityDays: cfg.ActivityRetentionDays,
		AuditDays:    cfg.AuditRetentionDays,
		AlertDays:    cfg.AlertRetentionDays,
	}, logger)
	sched.Start()
	defer sched.Stop()

	// HTTP API
	api := handler.NewHandler(db, engine, activitySvc, auditSvc, logger)
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           api.Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped, draining log queues")
	return nil
}
