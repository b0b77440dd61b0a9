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

	"github.com/joho/godotenv"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/config"
	"github.com/olegiv/lingocms/internal/geoip"
	"github.com/olegiv/lingocms/internal/handler/api"
	"github.com/olegiv/lingocms/internal/logging"
	"github.com/olegiv/lingocms/internal/middleware"
	"github.com/olegiv/lingocms/internal/scheduler"
	"github.com/olegiv/lingocms/internal/service"
	"github.com/olegiv/lingocms/internal/session"
	"github.com/olegiv/lingocms/internal/store"
	"github.com/olegiv/lingocms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// maxTrackedClients bounds the per-IP limiter caches between cleanups.
const maxTrackedClients = 10000

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "lingocms - account and authentication service\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_SESSION_SECRET      Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_JWT_SECRET          Bearer token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_DB_PATH             SQLite database path (default: ./data/lingocms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_REDIS_URL           Redis URL for the token denylist (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_TOKEN_DENYLIST      Set to \"memory\" for a process-local denylist (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_GEOIP_DB_PATH       GeoLite2 country database for event logs (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LINGO_BOOTSTRAP_PASSWORD  Initial superadmin password (optional)\n")
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
		_, _ = fmt.Printf("lingocms %s\n", info)
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	serviceLogger := slog.New(textHandler)
	slog.SetDefault(serviceLogger)
	slog.Info("starting lingocms", "version", info.String())

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
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

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR records from the default logger also land in the event log.
	// The account service records its own events and keeps the plain logger.
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))
	slog.Info("event log integration enabled", "min_level", "warn")

	hasher, err := auth.NewHasher(cfg.Argon2Params())
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}

	ctx := context.Background()

	var denylist auth.Denylist
	var memoryDenylist *auth.MemoryDenylist
	switch cfg.DenylistMode() {
	case config.DenylistRedis:
		redisDenylist, err := auth.NewRedisDenylist(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting token denylist: %w", err)
		}
		defer func() { _ = redisDenylist.Close() }()
		denylist = redisDenylist
		slog.Info("token revocation enabled", "backend", "redis")
	case config.DenylistMemory:
		memoryDenylist = auth.NewMemoryDenylist()
		denylist = memoryDenylist
		slog.Info("token revocation enabled", "backend", "memory")
	default:
		slog.Info("token revocation disabled, bearer tokens stay valid until expiry")
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Denylist: denylist,
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	var geo service.CountryLocator
	var locator *geoip.Locator
	if cfg.GeoIPEnabled() {
		locator, err = geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip database unavailable, events will not carry a country", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			defer func() { _ = locator.Close() }()
			geo = locator
			slog.Info("geoip lookup enabled", "path", cfg.GeoIPDBPath)
		}
	}

	events := service.NewEventService(db, geo)
	accounts := service.NewAccountService(db, hasher, tokens,
		service.WithEvents(events),
		service.WithLogger(serviceLogger),
	)

	created, err := store.Seed(ctx, db, hasher, store.SeedConfig{
		Username: cfg.BootstrapUsername,
		Email:    cfg.BootstrapEmail,
		Password: cfg.BootstrapPassword,
	})
	if err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if created {
		slog.Info("created bootstrap superadmin", "username", cfg.BootstrapUsername)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	loginProtection := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit: cfg.LoginRate,
		IPBurst:     cfg.LoginBurst,
	})
	rateLimiter := middleware.NewGlobalRateLimiter(cfg.APIRate, cfg.APIBurst)

	h := api.NewHandler(db, accounts, events, sessionManager).WithVersion(info)
	router := api.NewRouter(h, api.RouterConfig{
		IsDevelopment:   cfg.IsDevelopment(),
		TrustProxy:      cfg.TrustProxy,
		CSRFKey:         []byte(cfg.SessionSecret)[:32],
		LoginProtection: loginProtection,
		RateLimiter:     rateLimiter,
		RequestLog:      true,
	})

	sched := scheduler.New(serviceLogger)
	jobs := []scheduler.Job{
		scheduler.CleanupRateLimitersJob(loginProtection.Cleanup, func() {
			rateLimiter.Cleanup(maxTrackedClients)
		}),
	}
	if retention := cfg.EventRetention(); retention > 0 {
		jobs = append(jobs, scheduler.PruneEventsJob(events, retention, serviceLogger))
	}
	if memoryDenylist != nil {
		jobs = append(jobs, scheduler.PruneDenylistJob(memoryDenylist, serviceLogger))
	}
	if geo != nil {
		jobs = append(jobs, scheduler.ReloadGeoIPJob(locator))
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
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
