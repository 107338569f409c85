package pipeline

import (
	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
)

// FileSuccess is one fully processed file in a batch.
type FileSuccess struct {
	Filename string                `json:"filename"`
	Record   *schema.InvoiceRecord `json:"record"`
}

// FileFailure is one file that failed somewhere in its pipeline.
type FileFailure struct {
	Filename string              `json:"filename"`
	Error    string              `json:"error"`
	State    constants.FileState `json:"state"`
}

// BatchResult aggregates the per-file outcomes of one request. Built
// incrementally while machines run, read-only once returned. Entry order
// follows completion, not request order; each file appears exactly once.
type BatchResult struct {
	Successes []FileSuccess `json:"successes"`
	Failures  []FileFailure `json:"failures"`
}

// FileResult is the terminal outcome of one per-file machine.
type FileResult struct {
	Filename string
	State    constants.FileState
	Record   *schema.InvoiceRecord
	Err      error
}
