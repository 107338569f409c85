package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/classify"
	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/decode"
	"github.com/fiscalhub/invoice-ingest/internal/extract"
	"github.com/fiscalhub/invoice-ingest/internal/llm"
	"github.com/fiscalhub/invoice-ingest/internal/relocate"
	"github.com/fiscalhub/invoice-ingest/internal/schema"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

// Processor runs one file's state machine:
//
//	Received → Stored → TextExtracted → RecordExtracted → Normalized →
//	Classified → Relocated(success|failure)
//
// Transitions only move forward. Any failure after the object is stored
// short-circuits to Relocated(failure): the object is moved to the failure
// partition so nothing lingers under received. A failure before the object is
// stored has nothing to relocate and terminates where it happened.
type Processor struct {
	Logger     *slog.Logger
	Bucket     string
	Store      storage.ObjectStore
	Text       extract.TextExtractor
	Records    llm.RecordExtractor
	Normalizer *schema.Normalizer
	Relocator  *relocate.Engine
}

func NewProcessor(
	logger *slog.Logger,
	bucket string,
	store storage.ObjectStore,
	text extract.TextExtractor,
	records llm.RecordExtractor,
	normalizer *schema.Normalizer,
	relocator *relocate.Engine,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:     logger,
		Bucket:     bucket,
		Store:      store,
		Text:       text,
		Records:    records,
		Normalizer: normalizer,
		Relocator:  relocator,
	}
}

// ProcessFile drives part through every stage and always returns a terminal
// FileResult; errors never escape to sibling files.
func (p *Processor) ProcessFile(ctx context.Context, part decode.FilePart) FileResult {
	m := &machine{part: part, state: constants.StateReceived}

	if ext := filepath.Ext(part.OriginalFilename); !constants.IsExpectedExt(ext) {
		p.Logger.Warn("pipeline.unexpected_extension", "file", part.OriginalFilename, "ext", ext)
	}

	key := fmt.Sprintf("%s/%s-%s", constants.PartitionReceived, uuid.New().String(), part.OriginalFilename)
	if err := p.Store.Put(ctx, p.Bucket, key, part.Content); err != nil {
		p.Logger.Error("pipeline.store.failed", "file", part.OriginalFilename, "key", key, "error", err)
		return m.fail(err)
	}
	m.obj = storage.StoredObject{Bucket: p.Bucket, Key: key}
	m.advance(constants.StateStored)
	p.Logger.Info("pipeline.store.ok", "file", part.OriginalFilename, "key", key, "bytes", len(part.Content))

	text, err := p.Text.Extract(ctx, m.obj)
	if err != nil {
		p.Logger.Error("pipeline.ocr.failed", "file", part.OriginalFilename, "key", key, "error", err)
		return p.failAndRelocate(ctx, m, err)
	}
	if text.Empty() {
		p.Logger.Warn("pipeline.ocr.empty", "file", part.OriginalFilename, "key", key)
		return p.failAndRelocate(ctx, m, fmt.Errorf("%w: ocr produced no text", common.ErrEmptyExtraction))
	}
	m.advance(constants.StateTextExtracted)
	p.Logger.Info("pipeline.ocr.ok", "file", part.OriginalFilename, "fields", len(text.Fields))

	candidate, raw, err := p.Records.Infer(ctx, text.Flatten())
	if err != nil {
		p.Logger.Error("pipeline.infer.failed", "file", part.OriginalFilename, "error", err)
		return p.failAndRelocate(ctx, m, err)
	}
	m.advance(constants.StateRecordExtracted)
	p.Logger.Info("pipeline.infer.ok", "file", part.OriginalFilename, "raw_bytes", len(raw))

	record, err := p.Normalizer.Normalize(candidate)
	if err != nil {
		p.Logger.Error("pipeline.normalize.failed", "file", part.OriginalFilename, "error", err)
		return p.failAndRelocate(ctx, m, err)
	}
	m.advance(constants.StateNormalized)

	destination := classify.Classify(record)
	m.advance(constants.StateClassified)
	p.Logger.Info("pipeline.classify.ok", "file", part.OriginalFilename, "partition", string(destination))

	// Relocation must finish even if the request is being canceled; an object
	// stuck under received has no disposition.
	moved, err := p.Relocator.Relocate(context.WithoutCancel(ctx), m.obj, destination)
	if err != nil {
		return p.failAndRelocate(ctx, m, err)
	}
	m.obj = moved
	location := p.Relocator.Location(moved)
	record.StorageLocation = &location
	m.advance(constants.StateRelocatedSuccess)

	p.Logger.Info("pipeline.file.ok", "file", part.OriginalFilename, "state", string(m.state), "location", location)
	return FileResult{Filename: part.OriginalFilename, State: m.state, Record: record}
}

// failAndRelocate moves the stored object to the failure partition and
// terminates the machine. The move runs on a detached context so cancellation
// cannot strand the object.
func (p *Processor) failAndRelocate(ctx context.Context, m *machine, cause error) FileResult {
	if _, err := p.Relocator.Relocate(context.WithoutCancel(ctx), m.obj, constants.PartitionFailure); err != nil {
		// Both the pipeline and the fallback move failed; the object is still
		// under received. Report the original cause, the relocation error is
		// already logged.
		p.Logger.Error("pipeline.failure_relocation_failed",
			"file", m.part.OriginalFilename, "key", m.obj.Key, "error", err)
		return m.fail(cause)
	}
	m.state = constants.StateRelocatedFailure
	return m.fail(cause)
}

// machine tracks one file's progress through the pipeline.
type machine struct {
	part  decode.FilePart
	state constants.FileState
	obj   storage.StoredObject
}

// advance moves the machine forward; transitions never go backward.
func (m *machine) advance(next constants.FileState) {
	m.state = next
}

// fail terminates the machine at its current state. When the failure
// relocation went through, that state is StateRelocatedFailure; otherwise the
// machine stops where the failure happened (nothing stored yet, or the
// fallback move itself failed).
func (m *machine) fail(cause error) FileResult {
	return FileResult{Filename: m.part.OriginalFilename, State: m.state, Err: cause}
}
