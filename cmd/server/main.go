// Package main is the entrypoint for the shopscout API server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nattapongc/shopscout/internal/admission"
	"github.com/nattapongc/shopscout/internal/api"
	"github.com/nattapongc/shopscout/internal/api/handler"
	mw "github.com/nattapongc/shopscout/internal/api/middleware"
	"github.com/nattapongc/shopscout/internal/api/response"
	"github.com/nattapongc/shopscout/internal/cache"
	"github.com/nattapongc/shopscout/internal/catalog"
	"github.com/nattapongc/shopscout/internal/classifier"
	"github.com/nattapongc/shopscout/internal/config"
	"github.com/nattapongc/shopscout/internal/scraper"
	"github.com/nattapongc/shopscout/internal/shopee"
	"github.com/nattapongc/shopscout/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "classifier_url", cfg.Classifier.URL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 3. Upstream clients
	feed := shopee.NewHTTPClient(cfg.Shopee)
	scorer := classifier.NewHTTPClient(cfg.Classifier)

	// 4. Category directory, warmed once at startup (fixture fallback keeps
	// this from blocking boot on upstream trouble)
	directory := catalog.NewDirectory(feed)
	if err := directory.Refresh(ctx); err != nil {
		return fmt.Errorf("initial category refresh: %w", err)
	}

	// 5. Job registry, admission control, orchestrator
	jobStore := store.NewMemoryStore()
	guard := admission.NewGuard()
	scrapeSvc := scraper.NewService(jobStore, guard, directory, feed, scorer, cfg.Scrape, cfg.Shopee)

	// 6. Build router with dependencies
	rateLimit := mw.NewRateLimit(redisCache, cfg.RateLimit.RequestsPerMinute)

	deps := api.Dependencies{
		RateLimit: rateLimit,

		HealthHandler:     healthHandler(redisCache, directory),
		CategoriesHandler: handler.NewCategoriesHandler(directory, redisCache),
		ScrapeHandler:     handler.NewScrapeHandler(scrapeSvc, cfg.Scrape),
		StatusHandler:     handler.NewStatusHandler(jobStore),
		ResultsHandler:    handler.NewResultsHandler(jobStore),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks cache connectivity and category snapshot readiness.
func healthHandler(c cache.Cache, directory *catalog.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"cache":      "ok",
			"categories": "ok",
		}

		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}
		if !directory.Ready() {
			checks["categories"] = "degraded"
		}

		if checks["cache"] != "ok" || checks["categories"] != "ok" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{
				"success":  false,
				"status":   "degraded",
				"services": checks,
			})
			return
		}

		response.JSON(w, map[string]any{
			"success":  true,
			"status":   "ok",
			"services": checks,
		})
	}
}
