package llm

import "context"

// RecordExtractor is Stage 2: extracted text -> candidate structured record.
// The returned map is unvalidated; the schema normalizer is the only consumer.
// The raw JSON bytes ride along for logging and failure forensics.
type RecordExtractor interface {
	Infer(ctx context.Context, text string) (map[string]any, []byte, error)
}
