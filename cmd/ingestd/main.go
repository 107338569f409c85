package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	gcs "cloud.google.com/go/storage"
	"github.com/joho/godotenv"

	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/decode"
	"github.com/fiscalhub/invoice-ingest/internal/extract"
	"github.com/fiscalhub/invoice-ingest/internal/llm/gemini"
	"github.com/fiscalhub/invoice-ingest/internal/pipeline"
	"github.com/fiscalhub/invoice-ingest/internal/relocate"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
	"github.com/fiscalhub/invoice-ingest/internal/server"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		logger.Error("create storage client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logger.Warn("close storage client", "error", err)
		}
	}()
	store := storage.NewGCSStore(gcsClient, cfg.Storage.OpTimeout, logger)

	ocr := extract.NewHTTPExtractor(cfg.OCR.Endpoint, cfg.OCR.Timeout, logger)

	records, err := gemini.NewClient(ctx, gemini.Config{
		ProjectID:   cfg.LLM.ProjectID,
		Region:      cfg.LLM.Region,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Error("create gemini client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := records.Close(); err != nil {
			logger.Warn("close gemini client", "error", err)
		}
	}()

	proc := pipeline.NewProcessor(
		logger,
		cfg.Storage.Bucket,
		store,
		ocr,
		records,
		schema.NewNormalizer(logger),
		relocate.NewEngine(store, cfg.Storage.URIScheme, logger),
	)
	orchestrator := pipeline.NewOrchestrator(
		decode.NewMultipartDecoder(),
		proc,
		cfg.Batch.Workers,
		cfg.Batch.PerFileTimeout,
		logger,
	)

	handler := server.NewHandler(orchestrator, cfg.Batch.MaxBodyBytes, logger)
	srv := server.New(cfg.Server.Addr, cfg.Server.ReadTimeout, handler, logger)

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	logger.Info("stopped")
}
