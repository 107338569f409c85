// Package gemini adapts Vertex AI generative models to the llm.RecordExtractor
// interface.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"

	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	ProjectID   string
	Region      string
	Model       string // e.g. "gemini-1.5-flash"
	Temperature float32
	Timeout     time.Duration // per-call deadline
}

type Client struct {
	cfg    Config
	model  *genai.GenerativeModel
	base   *genai.Client
	logger *slog.Logger
}

// NewClient builds a Vertex AI client with a model pinned to JSON output and
// deterministic generation.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("gemini.NewClient: project id and region are required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(cfg.Temperature),
	}

	return &Client{cfg: cfg, model: model, base: base, logger: logger}, nil
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// Infer sends the document text to Gemini and parses the strict-JSON answer.
// A response that fails to parse is retried exactly once; a second parse
// failure is an external-service error for the file.
func (c *Client) Infer(ctx context.Context, text string) (map[string]any, []byte, error) {
	rid := uuid.New().String()
	prompt := llm.BuildPrompt(text)

	c.logger.Info("llm.infer.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(text))

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := c.generate(ctx, prompt)
		if err != nil {
			c.logger.Error("llm.infer.call_failed", "req_id", rid, "attempt", attempt, "error", err)
			return nil, nil, err
		}

		cleaned := []byte(llm.SanitizeResponse(string(raw)))
		var candidate map[string]any
		if err := json.Unmarshal(cleaned, &candidate); err != nil {
			lastErr = err
			c.logger.Warn("llm.infer.parse_failed", "req_id", rid, "attempt", attempt, "error", err, "bytes", len(cleaned))
			continue
		}

		c.logger.Info("llm.infer.ok", "req_id", rid, "attempt", attempt, "keys", len(candidate))
		return candidate, cleaned, nil
	}
	return nil, nil, fmt.Errorf("%w: gemini returned unparseable JSON: %v", common.ErrExternalService, lastErr)
}

func (c *Client) generate(ctx context.Context, prompt string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %v", common.ErrExternalService, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: gemini returned no candidates", common.ErrExternalService)
	}

	var out []byte
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			out = append(out, []byte(t)...)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: gemini candidate carried no text", common.ErrExternalService)
	}
	return out, nil
}
