package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/korjavin/nutrinorm/internal/api"
	"github.com/korjavin/nutrinorm/internal/audit"
	"github.com/korjavin/nutrinorm/internal/config"
	"github.com/korjavin/nutrinorm/internal/metrics"
	"github.com/korjavin/nutrinorm/internal/middleware"
	"github.com/korjavin/nutrinorm/internal/store"
)

func main() {
	cfg, err := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if len(cfg.APIKeys) == 0 {
		slog.Warn("API_KEYS not set, all requests will be accepted without authentication")
	}

	slog.Info("opening store", "data_dir", cfg.DataDir)
	s, err := store.OpenReadOnly(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	manifest, err := store.ReadManifest(cfg.DataDir)
	if err != nil {
		slog.Warn("manifest not found or unreadable", "error", err)
		manifest = nil
	} else {
		slog.Info("manifest loaded",
			"schema_version", manifest.SchemaVersion,
			"product_count", manifest.ProductCount,
			"build_time", manifest.BuildTime,
		)
	}

	var corrections api.Corrections
	auditPath := filepath.Join(cfg.DataDir, audit.FileName)
	if _, err := os.Stat(auditPath); err == nil {
		log, err := audit.Open(auditPath)
		if err != nil {
			slog.Error("failed to open corrections log", "path", auditPath, "error", err)
			os.Exit(1)
		}
		defer log.Close()
		corrections = log
	} else {
		slog.Warn("no corrections log, /api/v1/corrections disabled", "path", auditPath)
	}

	reg := metrics.NewRegistry()
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, cfg.APIKeys, api.NewHandler(s, manifest, corrections, reg))

	// Middleware chain (outer to inner): RealIP → Logging → CORS → RateLimit → mux
	handler := middleware.Chain(
		mux,
		middleware.RealIP(cfg.TrustedProxies),
		middleware.Logging(logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited")
}
