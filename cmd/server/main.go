package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zilezarach/torscrape-api/internal/config"
	"github.com/zilezarach/torscrape-api/internal/fetcher"
	"github.com/zilezarach/torscrape-api/internal/indexers/general"
	"github.com/zilezarach/torscrape-api/internal/logger"
	"github.com/zilezarach/torscrape-api/internal/search"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.NewWithConfig(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = log.Sync() }()

	f, err := fetcher.New(cfg.Fetch.Fetcher(), log)
	if err != nil {
		log.Fatal("Fetcher setup failed", zap.Error(err))
	}

	registry := general.NewRegistry(general.Mirrors{
		X1337:     cfg.Sites.X1337.BaseURL,
		PirateBay: cfg.Sites.PirateBay.BaseURL,
	}, log)
	orchestrator := search.New(f, search.Options{
		Timeout:           cfg.Fetch.Timeout,
		DetailConcurrency: cfg.Scrape.DetailConcurrency,
	}, log)

	gin.SetMode(gin.ReleaseMode)
	server := NewServer(registry, orchestrator, log)

	// Detail fan-out can take several fetch timeouts back to back
	srv := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        server.Handler(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server forced shutdown", zap.Error(err))
		}
	}()

	log.Info("Server starting",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("fetch_backend", cfg.Fetch.Backend),
		zap.Duration("fetch_timeout", cfg.Fetch.Timeout),
		zap.Int("detail_concurrency", cfg.Scrape.DetailConcurrency))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed", zap.Error(err))
	}
}
