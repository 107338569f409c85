package extract

import (
	"context"
	"strings"

	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

// TextExtractor is Stage 1: stored object -> natural-language text.
type TextExtractor interface {
	Extract(ctx context.Context, obj storage.StoredObject) (ExtractedText, error)
}

// LabeledValue is one label→value pair from an expense-analysis style OCR
// response. Order is preserved from the service.
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ExtractedText is the OCR output: either raw text, a list of labeled fields,
// or both. It is always flattened to a single blob before the record
// extractor sees it.
type ExtractedText struct {
	Text   string
	Fields []LabeledValue
}

// Flatten renders the extraction as one text blob: raw text first, then one
// "label: value" line per field.
func (e ExtractedText) Flatten() string {
	var b strings.Builder
	if t := strings.TrimSpace(e.Text); t != "" {
		b.WriteString(t)
	}
	for _, f := range e.Fields {
		if f.Label == "" && f.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(f.Value)
	}
	return b.String()
}

// Empty reports whether the extraction carries no usable text at all.
func (e ExtractedText) Empty() bool {
	return e.Flatten() == ""
}
