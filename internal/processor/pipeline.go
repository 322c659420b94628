// Package processor orchestrates the load, extract, validate and persist
// stages for single files and batches.
package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fiscalxml/processor/internal/loader"
	"github.com/fiscalxml/processor/internal/model"
	xmlparser "github.com/fiscalxml/processor/internal/parser/xml"
	"github.com/fiscalxml/processor/internal/storage"
	"github.com/fiscalxml/processor/internal/validate"
)

// Status is the terminal state of one processed file.
type Status string

const (
	// StatusSuccess means the document was extracted and, when a store is
	// configured, persisted.
	StatusSuccess Status = "success"
	// StatusSkipped means an identical document was already stored.
	StatusSkipped Status = "skipped"
	// StatusRejected means no usable document could be recovered.
	StatusRejected Status = "rejected"
)

// Result is the outcome of processing one file. Exactly one terminal status
// is set; Err is non-nil only for rejected files.
type Result struct {
	File         string              `json:"file"`
	Status       Status              `json:"status"`
	DocumentID   string              `json:"document_id,omitempty"`
	DocumentType model.DocumentType  `json:"document_type"`
	Document     *model.Document     `json:"document,omitempty"`
	Detection    xmlparser.Detection `json:"detection"`
	Elapsed      time.Duration       `json:"elapsed"`
	Err          error               `json:"-"`
}

// Pipeline wires the stages together. Safe for concurrent use.
type Pipeline struct {
	loader   *loader.Loader
	registry *xmlparser.Registry
	store    storage.Store
	maxSize  int64
	workers  int
	log      zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore sets the persistence backend. Without a store the pipeline runs
// dry: extraction and validation happen, nothing is deduplicated or saved.
func WithStore(store storage.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithLogger sets the pipeline logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMaxFileSize caps the size of accepted files in bytes.
func WithMaxFileSize(size int64) Option {
	return func(p *Pipeline) { p.maxSize = size }
}

// WithWorkers bounds batch concurrency.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		log:     zerolog.Nop(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.loader = loader.New(p.maxSize, p.log)
	p.registry = xmlparser.NewRegistry(p.log)
	return p
}

// ProcessFile runs one file through every stage. It never panics the batch:
// any failure lands in the returned Result.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) *Result {
	started := time.Now()

	in, err := p.loader.Load(path)
	if err != nil {
		return p.rejected(path, started, err)
	}
	return p.process(ctx, path, started, in)
}

// ProcessBytes runs in-memory content through the same stages; used by the
// HTTP surface.
func (p *Pipeline) ProcessBytes(ctx context.Context, name string, data []byte) *Result {
	started := time.Now()

	in, err := p.loader.FromBytes(name, data)
	if err != nil {
		return p.rejected(name, started, err)
	}
	return p.process(ctx, name, started, in)
}

func (p *Pipeline) process(ctx context.Context, name string, started time.Time, in *model.RawInput) *Result {
	hash := in.Fingerprint()

	// A byte-identical file is skipped before any parsing happens.
	if p.store != nil {
		exists, err := p.store.ExistsHash(ctx, hash)
		if err != nil {
			return p.rejected(name, started, err)
		}
		if exists {
			p.log.Debug().Str("file", in.Name).Msg("duplicate content hash, skipping")
			return &Result{File: name, Status: StatusSkipped, Elapsed: time.Since(started)}
		}
	}

	doc, det, err := p.registry.Extract(ctx, in)
	if err != nil {
		return p.rejected(name, started, err)
	}

	doc.FileName = in.Name
	doc.FilePath = in.Path
	doc.FileSize = in.Size
	doc.ContentHash = hash
	doc.Issues = append(doc.Issues, validate.Check(doc)...)

	// Different bytes can still carry the same access key (re-downloads,
	// re-encoded copies). The Insert unique constraint stays authoritative
	// under concurrency; this check skips the obvious case early.
	if p.store != nil && doc.AccessKey != "" {
		exists, err := p.store.ExistsAccessKey(ctx, doc.AccessKey)
		if err != nil {
			return p.rejected(name, started, err)
		}
		if exists {
			p.log.Debug().Str("file", in.Name).Str("access_key", doc.AccessKey).Msg("duplicate access key, skipping")
			return &Result{File: name, Status: StatusSkipped, Elapsed: time.Since(started)}
		}
	}

	result := &Result{
		File:         name,
		Status:       StatusSuccess,
		DocumentType: doc.Type,
		Document:     doc,
		Detection:    det,
	}

	if p.store != nil {
		id, err := p.store.Insert(ctx, doc)
		switch {
		case errors.Is(err, model.ErrDuplicate):
			result.Status = StatusSkipped
		case err != nil:
			return p.rejected(name, started, err)
		default:
			result.DocumentID = id
		}
	}

	result.Elapsed = time.Since(started)
	p.log.Info().
		Str("file", in.Name).
		Str("type", doc.Type.String()).
		Str("status", string(result.Status)).
		Int("issues", len(doc.Issues)).
		Dur("elapsed", result.Elapsed).
		Msg("processed")
	return result
}

func (p *Pipeline) rejected(name string, started time.Time, err error) *Result {
	p.log.Warn().Str("file", name).Err(err).Msg("rejected")
	return &Result{
		File:    name,
		Status:  StatusRejected,
		Elapsed: time.Since(started),
		Err:     err,
	}
}

// ProcessBatch processes paths with bounded concurrency. One bad file never
// aborts the batch; results keep the input order.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string) []*Result {
	results := make([]*Result, len(paths))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = p.ProcessFile(ctx, path)
		}(i, path)
	}

	wg.Wait()
	return results
}

// Stats exposes store statistics, or nil when running without a store.
func (p *Pipeline) Stats(ctx context.Context) (*storage.Stats, error) {
	if p.store == nil {
		return nil, nil
	}
	return p.store.Stats(ctx)
}

// Detect exposes schema detection without extraction.
func (p *Pipeline) Detect(content []byte) xmlparser.Detection {
	return xmlparser.Detect(content)
}
