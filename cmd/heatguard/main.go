package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/heatguard-service/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/heatguard-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/heatguard-service/internal/adapter/kafka"
	"github.com/couchcryptid/heatguard-service/internal/adapter/sqlite"
	"github.com/couchcryptid/heatguard-service/internal/config"
	"github.com/couchcryptid/heatguard-service/internal/observability"
	"github.com/couchcryptid/heatguard-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	engine, err := cfg.BuildEngine()
	if err != nil {
		logger.Error("invalid heat model configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archive, err := sqlite.Open(ctx, cfg.ArchivePath, logger, metrics)
	if err != nil {
		logger.Error("failed to open bulletin archive", "error", err, "path", cfg.ArchivePath)
		os.Exit(1)
	}
	cached := cache.NewCachedArchive(archive, cfg.ArchiveCacheSize, metrics)
	logger.Info("bulletin archive opened", "path", cfg.ArchivePath, "cache_size", cfg.ArchiveCacheSize)

	ready := httpadapter.AllReady{archive}

	var (
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
		p      *pipeline.Pipeline
	)
	if cfg.PipelineEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(engine, cfg.DefaultRole, cfg.HorizonHours, logger, metrics)
		p = pipeline.New(reader, transformer, pipeline.NewFanoutLoader(logger, writer, cached), logger, metrics, cfg.BatchSize)
		ready = append(ready, p)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	bulletins := httpadapter.NewBulletinHandler(engine, cached, cfg.DefaultRole, cfg.HorizonHours, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, bulletins, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start forecast pipeline.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if p == nil {
			return
		}
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := archive.Close(); err != nil {
		logger.Error("archive close error", "error", err)
	}

	logger.Info("shutdown complete")
}
