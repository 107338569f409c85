package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

// HTTPExtractor calls an expense-analysis OCR service over JSON. The service
// reads the object from the store itself (it receives bucket and key, not
// bytes) and answers with raw text, labeled fields, or both. An empty answer
// is not an error from the service's perspective; the pipeline decides what
// emptiness means.
type HTTPExtractor struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewHTTPExtractor(endpoint string, timeout time.Duration, logger *slog.Logger) *HTTPExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExtractor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type ocrRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type ocrResponse struct {
	Text   string         `json:"text"`
	Fields []LabeledValue `json:"fields"`
}

func (x *HTTPExtractor) Extract(ctx context.Context, obj storage.StoredObject) (ExtractedText, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(ocrRequest{Bucket: obj.Bucket, Key: obj.Key})
	if err != nil {
		return ExtractedText{}, fmt.Errorf("%w: encode ocr request: %v", common.ErrExternalService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(bs))
	if err != nil {
		return ExtractedText{}, fmt.Errorf("%w: build ocr request: %v", common.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	x.logger.Info("ocr.http.request", "req_id", reqID, "bucket", obj.Bucket, "key", obj.Key)

	resp, err := x.client.Do(req)
	if err != nil {
		x.logger.Error("ocr.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return ExtractedText{}, fmt.Errorf("%w: ocr call: %v", common.ErrExternalService, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			x.logger.Warn("ocr.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	x.logger.Info("ocr.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return ExtractedText{}, fmt.Errorf("%w: ocr status %d", common.ErrExternalService, resp.StatusCode)
	}

	var out ocrResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ExtractedText{}, fmt.Errorf("%w: decode ocr response: %v", common.ErrExternalService, err)
	}
	return ExtractedText{Text: out.Text, Fields: out.Fields}, nil
}
