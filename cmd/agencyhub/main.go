// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/agencyhub/internal/cache"
	"github.com/olegiv/agencyhub/internal/config"
	"github.com/olegiv/agencyhub/internal/handler/api"
	"github.com/olegiv/agencyhub/internal/logging"
	"github.com/olegiv/agencyhub/internal/middleware"
	"github.com/olegiv/agencyhub/internal/scheduler"
	"github.com/olegiv/agencyhub/internal/service"
	"github.com/olegiv/agencyhub/internal/session"
	"github.com/olegiv/agencyhub/internal/store"
	"github.com/olegiv/agencyhub/internal/version"
	"github.com/olegiv/agencyhub/internal/webhook"
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
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "agencyhub - multi-tenant content API for agency-run venues\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_SESSION_SECRET     Session secret (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_DB_PATH            SQLite database path (default: ./data/agencyhub.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_REDIS_URL          Redis URL for the shared render cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_PREVIEW_TTL_HOURS  Lifetime of preview tokens (default: 24)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGENCY_DO_SEED            Load demo businesses into an empty database\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR records also go to the activity log.
	activity := service.NewActivityService(db)
	logger = slog.New(logging.NewActivityLogHandler(textHandler, activity))
	slog.SetDefault(logger)
	slog.Info("activity log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	renderCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() {
		if err := renderCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	dispatcher := webhook.NewDispatcher(db, logger, webhook.Config{Workers: cfg.WebhookWorkers})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	slog.Info("webhook dispatcher initialized", "workers", cfg.WebhookWorkers)

	authService := service.NewAuthService(db, logger)
	pageService := service.NewPageService(db, logger,
		service.WithRenderCache(renderCache, cfg.CacheTTLDuration()),
		service.WithDispatcher(dispatcher),
		service.WithStrictPublish(cfg.StrictPagePublish),
		service.WithPreviewTTL(cfg.PreviewTTL()),
	)

	sched := scheduler.New(logger)
	for _, job := range []scheduler.Job{
		scheduler.PurgePreviewTokensJob(pageService, logger),
		scheduler.PruneActivityJob(activity, cfg.ActivityRetention(), logger),
		scheduler.RetryDeliveriesJob(dispatcher),
	} {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("registering job %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	apiHandler := api.NewHandler(api.Config{
		DB:              db,
		Sessions:        sessionManager,
		Logger:          logger,
		Auth:            authService,
		Pages:           pageService,
		Events:          service.NewEventService(db, logger, dispatcher),
		Bands:           service.NewBandService(db, logger),
		Menus:           service.NewMenuService(db, logger),
		Webhooks:        service.NewWebhookService(db, logger, nil),
		Activity:        activity,
		Dashboard:       service.NewDashboardService(db),
		Cache:           renderCache,
		LoginProtection: loginProtection,
		RateLimit:       cfg.APIRateLimit,
		RateBurst:       cfg.APIRateBurst,
		Version:         info.Version,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.SkipCSRFForAPIKeys)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	apiHandler.Routes(r)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusNotFound, "not_found", "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
