package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fiscalhub/invoice-ingest/constants"
	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/decode"
)

// Orchestrator is the exposed surface of the core: it decodes a batch and
// runs every file's machine independently over a bounded worker pool. One
// file's failure never aborts a sibling; the only request-aborting errors are
// decode-time errors before any machine starts.
type Orchestrator struct {
	decoder        decode.Decoder
	proc           *Processor
	workers        int
	perFileTimeout time.Duration
	logger         *slog.Logger
}

func NewOrchestrator(decoder decode.Decoder, proc *Processor, workers int, perFileTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 4
	}
	if perFileTimeout <= 0 {
		perFileTimeout = 3 * time.Minute
	}
	return &Orchestrator{
		decoder:        decoder,
		proc:           proc,
		workers:        workers,
		perFileTimeout: perFileTimeout,
		logger:         logger,
	}
}

// ProcessBatch decodes rawBody and fans the file parts out over the pool.
// Fan-out is bounded by the worker count and never exceeds the number of
// files in the request. Cancellation stops launching new machines; machines
// already in flight finish their relocation.
func (o *Orchestrator) ProcessBatch(ctx context.Context, rawBody []byte, contentType string) (*BatchResult, error) {
	parts, err := o.decoder.Decode(rawBody, contentType)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return &BatchResult{}, common.ErrNoFilesProvided
	}

	o.logger.Info("batch.start", "files", len(parts), "workers", o.workers)
	start := time.Now()

	pool, err := ants.NewPool(o.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result BatchResult
	)
	record := func(res FileResult) {
		mu.Lock()
		defer mu.Unlock()
		if res.Err != nil {
			result.Failures = append(result.Failures, FileFailure{
				Filename: res.Filename,
				Error:    res.Err.Error(),
				State:    res.State,
			})
			return
		}
		result.Successes = append(result.Successes, FileSuccess{
			Filename: res.Filename,
			Record:   res.Record,
		})
	}

	for _, part := range parts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Stop launching machines; files never started still get a
			// failure entry so each file appears exactly once.
			o.logger.Warn("batch.canceled_before_launch", "file", part.OriginalFilename)
			record(FileResult{
				Filename: part.OriginalFilename,
				State:    constants.StateReceived,
				Err:      fmt.Errorf("not processed: %w", ctxErr),
			})
			continue
		}

		part := part
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			fileCtx, cancel := context.WithTimeout(ctx, o.perFileTimeout)
			defer cancel()
			record(o.proc.ProcessFile(fileCtx, part))
		})
		if submitErr != nil {
			wg.Done()
			record(FileResult{
				Filename: part.OriginalFilename,
				State:    constants.StateReceived,
				Err:      fmt.Errorf("not processed: %w", submitErr),
			})
		}
	}
	wg.Wait()

	o.logger.Info("batch.done",
		"files", len(parts),
		"successes", len(result.Successes),
		"failures", len(result.Failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &result, nil
}
