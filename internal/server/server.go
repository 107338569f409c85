package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New builds the HTTP server with the batch and health routes mounted.
func New(addr string, readTimeout time.Duration, handler *Handler, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Post("/v1/batches", handler.ProcessBatch)

	return &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: readTimeout,
	}
}
