package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/bazaar/internal/adapter/bcrypt"
	"github.com/neomorfeo/bazaar/internal/adapter/fsm"
	"github.com/neomorfeo/bazaar/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/bazaar/internal/adapter/river"
	"github.com/neomorfeo/bazaar/internal/adapter/session"
	"github.com/neomorfeo/bazaar/internal/adapter/sqlite"
	"github.com/neomorfeo/bazaar/internal/app"
	"github.com/neomorfeo/bazaar/internal/config"

	handler "github.com/neomorfeo/bazaar/internal/adapter/http"
)

const (
	serviceName    = "bazaar"
	serviceVersion = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("bazaar stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if cfg.InsecureSecret() {
		logger.Warn("BAZAAR_DEV is set; sessions are signed with the public development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	otelCfg, err := otel.ConfigFromEnv()
	if err != nil {
		return err
	}
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	jobs, err := riveradapter.Setup(ctx, db, riveradapter.Options{Workers: cfg.JobWorkers, Logger: logger})
	if err != nil {
		return fmt.Errorf("job queue: %w", err)
	}
	// Started outside ctx so in-flight jobs finish during Stop.
	if err := jobs.Start(context.Background()); err != nil {
		return fmt.Errorf("starting job queue: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := jobs.Stop(stopCtx); err != nil {
			logger.Error("job queue shutdown", "error", err)
		}
	}()

	publisher, err := otel.NewTracingPublisher(riveradapter.NewPublisher(jobs))
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}

	// --- Application ---
	moderation := app.NewModerationService(
		otel.NewTracingVendorRepository(store.Vendors()),
		fsm.New(),
		publisher,
		app.WithLogger(logger),
	)
	catalog := app.NewCatalogService(otel.NewTracingCategoryRepository(store.Categories()))
	auth := app.NewAuthService(store.Admins(), bcrypt.New(0), sessions)

	if err := bootstrap(ctx, cfg, auth, catalog, logger); err != nil {
		return err
	}

	// --- Adapters (in) ---
	router := newRouter(handler.Services{
		Moderation:    moderation,
		Catalog:       catalog,
		Auth:          auth,
		Resolver:      sessions,
		Logger:        logger,
		LoginLimiter:  handler.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		SecureCookies: cfg.SecureCookies,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("bazaar listening", "addr", srv.Addr, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// bootstrap creates the configured admin and seeds an empty catalog.
func bootstrap(ctx context.Context, cfg config.Config, auth *app.AuthService, catalog *app.CatalogService, logger *slog.Logger) error {
	if cfg.BootstrapAdmin() {
		created, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			return fmt.Errorf("bootstrapping admin: %w", err)
		}
		if created {
			logger.Info("admin created", "email", cfg.AdminEmail)
		}
	}

	if len(cfg.SeedCategories) > 0 {
		n, err := catalog.Seed(ctx, cfg.SeedCategories)
		if err != nil {
			return fmt.Errorf("seeding categories: %w", err)
		}
		if n > 0 {
			logger.Info("categories seeded", "count", n)
		}
	}
	return nil
}

func newRouter(s handler.Services) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig(serviceName, serviceVersion))
	handler.Register(api, s)
	return router
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
