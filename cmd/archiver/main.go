package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reasv/board-archiver/internal/adminapi"
	"github.com/reasv/board-archiver/internal/archiver"
	"github.com/reasv/board-archiver/internal/blobstore"
	"github.com/reasv/board-archiver/internal/config"
	"github.com/reasv/board-archiver/internal/database"
	"github.com/reasv/board-archiver/internal/dedup"
	"github.com/reasv/board-archiver/internal/fetcher"
	"github.com/reasv/board-archiver/internal/logger"
	"github.com/reasv/board-archiver/internal/metrics"
	"github.com/reasv/board-archiver/internal/observability"
	"github.com/reasv/board-archiver/internal/repositories"
	"github.com/reasv/board-archiver/internal/router"
)

func main() {
	env := os.Getenv("ENV")
	log := logger.Init("board-archiver", env, logger.ParseLevelFromEnv())

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.InitOTel(ctx, "board-archiver")
	if err != nil {
		log.Error("failed to init otel", "error", err)
		os.Exit(1)
	}
	defer shutdownOTel(context.Background())

	db, err := database.New(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var blobs blobstore.Store
	if cfg.EnableS3Storage {
		s3store, err := blobstore.NewS3Store(cfg.S3)
		if err != nil {
			log.Error("failed to init s3 blob store", "error", err)
			os.Exit(1)
		}
		blobs = s3store
	} else {
		blobs = blobstore.NewLocalStore(cfg.DataRoot)
	}

	sink := metrics.NoopSink{}
	f := fetcher.New(cfg.Fetcher, sink)
	cache := dedup.New()
	store := repositories.New(db, cache, log)

	sv := archiver.New(store, f, blobs, sink, cfg.BoardAPIBase, cfg.ImageCDNBase, log)

	go sv.Run(ctx, cache)

	handler := adminapi.New(sv, store)
	engine := router.New(handler, cfg.AllowedOrigins, "board-archiver")

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
	}

	go func() {
		log.Info("admin api listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("admin api server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("admin api shutdown error", "error", err)
	}
}
