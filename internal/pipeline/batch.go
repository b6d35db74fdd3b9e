package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/grepscan/internal/detector"
	"github.com/nao1215/grepscan/internal/document"
	"github.com/nao1215/grepscan/internal/model"
)

// Source is one document to scan: either a dump file to load or a
// document already in memory.
type Source struct {
	// Path is the dump file to load.
	Path string

	// Document is used as-is when set.
	Document *model.Document
}

// String returns the path, or the document URL for in-memory sources.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Document != nil {
		return s.Document.URL
	}
	return ""
}

// Loader reads a document from a dump file.
type Loader func(path string) (*model.Document, error)

// Result is the outcome of processing one source.
type Result struct {
	// Source identifies the source (see Source.String).
	Source string

	// URL is the document URL. Empty when loading failed.
	URL string

	// Loaded reports whether the document reached the detectors.
	Loaded bool

	// Err holds the load error or the joined detector errors.
	Err error
}

// BatchProcessor handles concurrent processing of many documents.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on the sequence of scan stages
// 2. It lets library callers stream documents without a pipeline
type BatchProcessor struct {
	// set runs the detectors. It is shared by all goroutines.
	set *detector.Set

	// load reads dump files.
	load Loader

	// concurrency is the maximum number of documents in flight.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent documents.
// Default is 10 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithLoader replaces document.LoadFile as the dump loader.
func WithLoader(load Loader) BatchOption {
	return func(b *BatchProcessor) {
		if load != nil {
			b.load = load
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor running set.
func NewBatchProcessor(set *detector.Set, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		set:         set,
		load:        document.LoadFile,
		concurrency: 10,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes sources concurrently and returns one result per
// source, in input order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// A failing source never stops the batch; its error is in its Result.
// The returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(r Result, i int) {
		results[i] = r
	})
	return results, err
}

// ProcessBatchWithCallback processes sources and calls callback for each
// completed source with its index in sources. The callback is called from
// the goroutine that processed the source, so it must be safe for
// concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []Source,
	callback func(result Result, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_documents", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			callback(bp.process(ctx, src), i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_documents", len(sources),
		"elapsed", time.Since(startTime),
	)

	return err
}

// process loads one source if needed and runs the detectors over it.
func (bp *BatchProcessor) process(ctx context.Context, src Source) Result {
	result := Result{Source: src.String()}

	doc := src.Document
	if doc == nil {
		var err error
		doc, err = bp.load(src.Path)
		if err != nil {
			bp.logger.Warn("failed to load document",
				"source", result.Source,
				"error", err,
			)
			result.Err = err
			return result
		}
	}

	result.URL = doc.URL
	result.Loaded = true
	result.Err = bp.set.Process(ctx, doc)

	bp.logger.Debug("document processed",
		"source", result.Source,
		"url", doc.URL,
	)

	return result
}
