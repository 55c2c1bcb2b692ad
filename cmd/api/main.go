// Command api serves the house energy REST API: login, consumption queries,
// bill downloads, and on-demand daily reports.
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

	httpadapter "github.com/couchcryptid/house-energy-service/internal/adapter/http"
	"github.com/couchcryptid/house-energy-service/internal/adapter/mysql"
	"github.com/couchcryptid/house-energy-service/internal/adapter/ollama"
	"github.com/couchcryptid/house-energy-service/internal/auth"
	"github.com/couchcryptid/house-energy-service/internal/config"
	"github.com/couchcryptid/house-energy-service/internal/domain"
	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/couchcryptid/house-energy-service/internal/report"
)

const narrativeCacheSize = 64

func main() {
	if err := run(); err != nil {
		slog.Error("api failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.Open(ctx, cfg.DB, logger, mysql.OpenOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := mysql.Close(db); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	store := mysql.NewStore(db, logger)

	client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, logger)
	narrator, err := ollama.NewCachedNarrator(client, narrativeCacheSize)
	if err != nil {
		return err
	}
	reports := report.NewRunner(store, narrator, logger, metrics, report.Options{
		Model:             cfg.OllamaModel,
		NarrativeAttempts: cfg.NarrativeAttempts,
	})

	now := domain.Now
	if cfg.Now != nil {
		pinned := *cfg.Now
		now = func() time.Time { return pinned }
		logger.Info("api clock pinned", "now", pinned.Format(config.NowLayout))
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Store:   store,
		Reports: reports,
		Tokens:  auth.NewTokens(cfg.SecretKey, cfg.TokenLifetime, nil),
		Metrics: metrics,
		Logger:  logger,
		Now:     now,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
