package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/pipeline"
)

// batchEnvelope is the HTTP response shape for one processed batch.
type batchEnvelope struct {
	Status  string                 `json:"status"`
	Results []pipeline.FileSuccess `json:"results"`
	Errors  []pipeline.FileFailure `json:"errors"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// Handler exposes the ingestion pipeline over HTTP.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	maxBodyBytes int64
	logger       *slog.Logger
}

func NewHandler(orchestrator *pipeline.Orchestrator, maxBodyBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 32 << 20
	}
	return &Handler{orchestrator: orchestrator, maxBodyBytes: maxBodyBytes, logger: logger}
}

// ProcessBatch handles POST /v1/batches: reads the multipart body, resolves
// the optional base64 transfer encoding, runs the pipeline, and maps the
// error taxonomy onto status codes. Per-file failures are not HTTP errors; a
// batch with zero successes and three failures is still a 200.
func (h *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		h.logger.Error("http.batch.read_body_failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "could not read request body"})
		return
	}
	if int64(len(body)) > h.maxBodyBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: "request body too large"})
		return
	}

	// API gateways commonly ship binary bodies base64-encoded; the core only
	// ever sees decoded bytes.
	if strings.EqualFold(r.Header.Get("Content-Transfer-Encoding"), "base64") {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "body is not valid base64"})
			return
		}
		body = decoded
	}

	result, err := h.orchestrator.ProcessBatch(r.Context(), body, r.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoFilesProvided):
			writeJSON(w, http.StatusBadRequest, batchEnvelope{
				Status:  "no_files",
				Results: []pipeline.FileSuccess{},
				Errors:  []pipeline.FileFailure{},
			})
		case errors.Is(err, common.ErrMalformedRequest):
			writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: err.Error()})
		default:
			h.logger.Error("http.batch.internal_error", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal error"})
		}
		return
	}

	envelope := batchEnvelope{
		Status:  "success",
		Results: result.Successes,
		Errors:  result.Failures,
	}
	if envelope.Results == nil {
		envelope.Results = []pipeline.FileSuccess{}
	}
	if envelope.Errors == nil {
		envelope.Errors = []pipeline.FileFailure{}
	}
	if len(envelope.Results) == 0 {
		envelope.Status = "failed"
	} else if len(envelope.Errors) > 0 {
		envelope.Status = "partial"
	}
	writeJSON(w, http.StatusOK, envelope)
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
