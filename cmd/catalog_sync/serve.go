package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portsrepo "github.com/SscSPs/catalog_sync_app/internal/core/ports/repositories"
	"github.com/SscSPs/catalog_sync_app/internal/core/services"
	"github.com/SscSPs/catalog_sync_app/internal/handlers"
	"github.com/SscSPs/catalog_sync_app/internal/metrics"
	"github.com/SscSPs/catalog_sync_app/internal/middleware"
	"github.com/SscSPs/catalog_sync_app/internal/platform/config"
	"github.com/SscSPs/catalog_sync_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/catalog_sync_app/internal/utils"
	"github.com/SscSPs/catalog_sync_app/migrations"
	"github.com/SscSPs/catalog_sync_app/pkg/database"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the catalog HTTP API.

The mirror is loaded from the database (when PGSQL_URL is set) and refreshed
from the ledger before requests are served. The server runs until interrupted.

Example:
  LEDGER_DRIVER=memory catalog_sync serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := createLogger(cfg.IsProduction, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	binding, closeLedger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	repos := portsrepo.RepositoryProvider{}
	if cfg.DatabaseURL != "" {
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
		if err != nil {
			return fmt.Errorf("initializing database pool: %w", err)
		}
		defer dbPool.Close()

		if err := database.RunMigrations(cfg.DatabaseURL, migrations.FS, logger); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		repos = pgsql.NewRepositoryProvider(dbPool)
	}

	promMetrics := metrics.NewPrometheusMetrics(cfg.MetricsNamespace)
	container := services.NewServiceContainer(cfg, binding, repos, logger, promMetrics)

	// A ledger outage at start-up is not fatal; the persisted mirror is served
	// and the next refresh retries.
	if err := container.Catalog.Start(ctx); err != nil {
		logger.Warn("Catalog start-up incomplete", slog.String("error", err.Error()))
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT %q: %w", cfg.RateLimit, err)
	}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendBaseURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("setting trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container, promMetrics.Handler(), rateLimiter, posthogClient)

	// No write timeout: mutations hold the request until confirmation.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("deployment", cfg.Deployment()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received signal, shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", slog.String("error", err.Error()))
		return fmt.Errorf("shutting down: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
