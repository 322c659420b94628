package fiscal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fiscalxml/processor/internal/processor"
	"github.com/fiscalxml/processor/internal/storage"
)

// Status of a processed file.
type Status = processor.Status

const (
	StatusSuccess  = processor.StatusSuccess
	StatusSkipped  = processor.StatusSkipped
	StatusRejected = processor.StatusRejected
)

// Result of processing one file.
type Result = processor.Result

// Store is the persistence backend contract.
type Store = storage.Store

// NewMemoryStore creates an in-process store, useful for tests and dry runs
// that still want deduplication.
func NewMemoryStore() Store { return storage.NewMemory() }

// Options configures a Processor.
type Options struct {
	// Store receives extracted documents; nil disables persistence and
	// deduplication.
	Store Store
	// MaxFileSize caps accepted file sizes in bytes; zero uses the default.
	MaxFileSize int64
	// Workers bounds batch concurrency; zero uses the default.
	Workers int
	// Logger used by all stages; zero value silences logging.
	Logger zerolog.Logger
}

// Processor is the high-level entry point wrapping the whole pipeline.
type Processor struct {
	pipeline *processor.Pipeline
}

// NewProcessor creates a processor with default options.
func NewProcessor() *Processor {
	return NewProcessorWithOptions(Options{})
}

// NewProcessorWithOptions creates a processor with explicit options.
func NewProcessorWithOptions(opts Options) *Processor {
	var popts []processor.Option
	if opts.Store != nil {
		popts = append(popts, processor.WithStore(opts.Store))
	}
	if opts.MaxFileSize > 0 {
		popts = append(popts, processor.WithMaxFileSize(opts.MaxFileSize))
	}
	if opts.Workers > 0 {
		popts = append(popts, processor.WithWorkers(opts.Workers))
	}
	popts = append(popts, processor.WithLogger(opts.Logger))

	return &Processor{pipeline: processor.NewPipeline(popts...)}
}

// Process runs one file through the pipeline.
func (p *Processor) Process(ctx context.Context, path string) *Result {
	return p.pipeline.ProcessFile(ctx, path)
}

// ProcessBytes runs in-memory XML content through the pipeline.
func (p *Processor) ProcessBytes(ctx context.Context, name string, data []byte) *Result {
	return p.pipeline.ProcessBytes(ctx, name, data)
}

// ProcessBatch runs many files with bounded concurrency. Results keep the
// input order and one bad file never aborts the batch.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) []*Result {
	return p.pipeline.ProcessBatch(ctx, paths)
}
