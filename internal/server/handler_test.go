package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/invoice-ingest/internal/decode"
	"github.com/fiscalhub/invoice-ingest/internal/extract"
	"github.com/fiscalhub/invoice-ingest/internal/pipeline"
	"github.com/fiscalhub/invoice-ingest/internal/relocate"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

type staticOCR struct{}

func (staticOCR) Extract(_ context.Context, _ storage.StoredObject) (extract.ExtractedText, error) {
	return extract.ExtractedText{Text: "NOTA FISCAL TOTAL 42.00 PIX"}, nil
}

type emptyOCR struct{}

func (emptyOCR) Extract(_ context.Context, _ storage.StoredObject) (extract.ExtractedText, error) {
	return extract.ExtractedText{}, nil
}

type staticLLM struct{}

func (staticLLM) Infer(_ context.Context, _ string) (map[string]any, []byte, error) {
	return map[string]any{
		"issuer_name":    "Padaria do Bairro",
		"total_amount":   "42.00",
		"payment_method": "pix",
	}, []byte("{}"), nil
}

func newTestHandler(t *testing.T) (*Handler, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	proc := pipeline.NewProcessor(
		nil,
		"receipts",
		store,
		staticOCR{},
		staticLLM{},
		schema.NewNormalizer(nil),
		relocate.NewEngine(store, "mem", nil),
	)
	o := pipeline.NewOrchestrator(decode.NewMultipartDecoder(), proc, 2, time.Minute, nil)
	return NewHandler(o, 1<<20, nil), store
}

func multipartBody(t *testing.T, filenames ...string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range filenames {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-1.4 stub"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) batchEnvelope {
	t.Helper()
	var env batchEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func TestHandler_ProcessBatch(t *testing.T) {
	t.Run("multipart upload returns a success envelope", func(t *testing.T) {
		h, store := newTestHandler(t)
		body, ct := multipartBody(t, "nota.pdf")

		req := httptest.NewRequest(http.MethodPost, "/v1/batches", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

		env := decodeEnvelope(t, rr)
		assert.Equal(t, "success", env.Status)
		require.Len(t, env.Results, 1)
		assert.Empty(t, env.Errors)
		assert.Equal(t, "nota.pdf", env.Results[0].Filename)
		require.NotNil(t, env.Results[0].Record.StorageLocation)
		assert.True(t, strings.HasPrefix(*env.Results[0].Record.StorageLocation, "mem://receipts/cash/"))

		// The moved object must exist in the store under the cash partition.
		var cashKeys int
		for _, k := range store.Keys() {
			if strings.HasPrefix(k, "receipts/cash/") {
				cashKeys++
			}
		}
		assert.Equal(t, 1, cashKeys)
	})

	t.Run("base64 transfer encoding is decoded before parsing", func(t *testing.T) {
		h, _ := newTestHandler(t)
		body, ct := multipartBody(t, "nota.pdf")
		encoded := base64.StdEncoding.EncodeToString(body)

		req := httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader(encoded))
		req.Header.Set("Content-Type", ct)
		req.Header.Set("Content-Transfer-Encoding", "base64")
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "success", env.Status)
		assert.Len(t, env.Results, 1)
	})

	t.Run("invalid base64 body is a 400", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader("@@not-base64@@"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		req.Header.Set("Content-Transfer-Encoding", "base64")
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("multipart body without files is a 400 no_files envelope", func(t *testing.T) {
		h, _ := newTestHandler(t)

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("comment", "nothing attached"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/batches", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "no_files", env.Status)
		assert.NotNil(t, env.Results)
		assert.NotNil(t, env.Errors)
		assert.Empty(t, env.Results)
		assert.Empty(t, env.Errors)
	})

	t.Run("non-multipart content type is a 400", func(t *testing.T) {
		h, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader(`{"not":"multipart"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var env errorEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		assert.Contains(t, env.Error, "malformed multipart request")
	})

	t.Run("batch with zero successes is a 200 with status failed", func(t *testing.T) {
		store := storage.NewMemoryStore()
		proc := pipeline.NewProcessor(
			nil,
			"receipts",
			store,
			emptyOCR{},
			staticLLM{},
			schema.NewNormalizer(nil),
			relocate.NewEngine(store, "mem", nil),
		)
		o := pipeline.NewOrchestrator(decode.NewMultipartDecoder(), proc, 2, time.Minute, nil)
		h := NewHandler(o, 1<<20, nil)

		body, ct := multipartBody(t, "blank.jpg")
		req := httptest.NewRequest(http.MethodPost, "/v1/batches", bytes.NewReader(body))
		req.Header.Set("Content-Type", ct)
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.Equal(t, "failed", env.Status)
		assert.Empty(t, env.Results)
		assert.Len(t, env.Errors, 1)
	})

	t.Run("oversized body is a 413", func(t *testing.T) {
		h, _ := newTestHandler(t)

		big := bytes.Repeat([]byte("a"), (1<<20)+1)
		req := httptest.NewRequest(http.MethodPost, "/v1/batches", bytes.NewReader(big))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		rr := httptest.NewRecorder()
		h.ProcessBatch(rr, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})
}

func TestHandler_Healthz(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.Healthz(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
