package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/studyrag-mcp/internal/chunker"
	"github.com/dshills/studyrag-mcp/internal/embedder"
	"github.com/dshills/studyrag-mcp/internal/extract"
	"github.com/dshills/studyrag-mcp/internal/library"
	"github.com/dshills/studyrag-mcp/internal/storage"
	"github.com/dshills/studyrag-mcp/pkg/types"
)

// Mode selects how a run treats documents whose fingerprints are unchanged.
type Mode int

const (
	// ModeIncremental re-ingests only new, changed, and previously failed
	// documents. Unchanged completed documents are left untouched.
	ModeIncremental Mode = iota

	// ModeForced re-ingests every document regardless of fingerprint.
	ModeForced
)

// Extractor produces per-page text for a source document.
type Extractor interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// Failure records one document that could not be ingested.
type Failure struct {
	RelativePath string
	Reason       string
}

// Report summarizes one pipeline run.
type Report struct {
	Scanned   int
	Succeeded int
	Skipped   int
	Failed    int
	Failures  []Failure
	Duration  time.Duration
}

// Pipeline orchestrates scan, extract, chunk, embed, and store for a library
// root. Safe for concurrent use; per-path locks keep overlapping runs from
// processing the same document twice.
type Pipeline struct {
	store     storage.Store
	embedder  embedder.Embedder
	extractor Extractor
	chunker   *chunker.Chunker
	workers   int
	batchSize int
	locks     *pathLocks
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor replaces the default extraction registry.
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithChunker replaces the default chunker.
func WithChunker(c *chunker.Chunker) Option {
	return func(p *Pipeline) { p.chunker = c }
}

// WithWorkers sets the number of documents processed concurrently.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithBatchSize sets how many chunk texts go to the embedder per call.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// New creates a Pipeline with the default extractor, chunker, and worker
// count.
func New(store storage.Store, emb embedder.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		embedder:  emb,
		extractor: extract.NewRegistry(),
		chunker:   chunker.New(),
		workers:   runtime.NumCPU(),
		batchSize: embedder.DefaultBatchSize,
		locks:     newPathLocks(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run ingests the library under root. The returned Report accounts for every
// scanned document; per-document failures are collected, not propagated. The
// only errors returned are an unusable root or a canceled context.
func (p *Pipeline) Run(ctx context.Context, root string, mode Mode) (*Report, error) {
	start := time.Now()

	scan, err := library.Scan(root)
	if err != nil {
		return nil, err
	}

	report := &Report{Scanned: len(scan.Entries)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.workers)

	for _, entry := range scan.Entries {
		entry := entry
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			outcome := p.processDocument(ctx, entry, mode)

			mu.Lock()
			defer mu.Unlock()
			switch outcome.kind {
			case outcomeSucceeded:
				report.Succeeded++
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
				report.Failures = append(report.Failures, Failure{
					RelativePath: entry.RelativePath,
					Reason:       outcome.reason,
				})
			}
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	return report, nil
}

type outcomeKind int

const (
	outcomeSucceeded outcomeKind = iota
	outcomeSkipped
	outcomeFailed
)

type outcome struct {
	kind   outcomeKind
	reason string
}

func succeeded() outcome       { return outcome{kind: outcomeSucceeded} }
func skipped() outcome         { return outcome{kind: outcomeSkipped} }
func failed(err error) outcome { return outcome{kind: outcomeFailed, reason: err.Error()} }

// processDocument ingests one document end to end. All failures are resolved
// to an outcome; nothing escapes to abort the run.
func (p *Pipeline) processDocument(ctx context.Context, entry types.DocumentEntry, mode Mode) outcome {
	if !p.locks.TryLock(entry.RelativePath) {
		return skipped() // Another run holds this document
	}
	defer p.locks.Unlock(entry.RelativePath)

	raw, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		return p.fail(ctx, entry, [32]byte{}, fmt.Errorf("read source file: %w", err))
	}
	fingerprint := sha256.Sum256(raw)

	if mode == ModeIncremental {
		existing, err := p.store.GetDocument(ctx, entry.RelativePath)
		if err == nil && existing.Status == storage.StatusCompleted && existing.Fingerprint == fingerprint {
			// Unchanged and already indexed; no writes at all
			return skipped()
		}
	}

	doc := &storage.DocumentRecord{
		RelativePath: entry.RelativePath,
		Term:         entry.Term,
		Topic:        entry.Topic,
		Title:        entry.Title,
		DisplayName:  entry.DisplayName,
		Fingerprint:  fingerprint,
		Status:       storage.StatusProcessing,
	}
	if err := p.store.UpsertDocument(ctx, doc); err != nil {
		return failed(&types.IndexWriteError{RelativePath: entry.RelativePath, Err: err})
	}

	pages, err := p.extractor.ReadPages(ctx, entry.AbsPath)
	if err != nil {
		return p.fail(ctx, entry, fingerprint, &types.ExtractionError{RelativePath: entry.RelativePath, Err: err})
	}

	chunks := p.chunker.ChunkPages(entry, pages)

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return p.fail(ctx, entry, fingerprint, &types.EmbeddingError{Provider: p.embedder.Provider(), Err: err})
	}

	withVectors := make([]storage.ChunkWithVector, len(chunks))
	for i, c := range chunks {
		withVectors[i] = storage.ChunkWithVector{
			Text:      c.Text,
			PageIndex: c.PageIndex,
			Ordinal:   c.Ordinal,
			Vector:    vectors[i],
			Provider:  p.embedder.Provider(),
			Model:     p.embedder.Model(),
		}
	}
	if err := p.store.ReplaceChunks(ctx, entry.RelativePath, withVectors); err != nil {
		return p.fail(ctx, entry, fingerprint, &types.IndexWriteError{RelativePath: entry.RelativePath, Err: err})
	}

	mark := storage.Mark{
		Status:      storage.StatusCompleted,
		Fingerprint: fingerprint,
		ChunkCount:  len(chunks),
	}
	if err := p.store.MarkDocument(ctx, entry.RelativePath, mark); err != nil {
		return failed(&types.IndexWriteError{RelativePath: entry.RelativePath, Err: err})
	}

	return succeeded()
}

// embedChunks embeds chunk texts in provider-sized batches, preserving order.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []types.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		batch, err := p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// fail records a document failure in the ledger and cleans up any chunks the
// partial run may have left. Cleanup errors are secondary; the original
// failure is what gets reported.
func (p *Pipeline) fail(ctx context.Context, entry types.DocumentEntry, fingerprint [32]byte, cause error) outcome {
	_ = p.store.DeleteChunks(ctx, entry.RelativePath)

	err := p.store.MarkDocument(ctx, entry.RelativePath, storage.Mark{
		Status:      storage.StatusFailed,
		Fingerprint: fingerprint,
		LastError:   cause.Error(),
	})
	if err == storage.ErrNotFound {
		// Failure happened before the ledger row existed; create it so the
		// failure is still visible in status listings.
		_ = p.store.UpsertDocument(ctx, &storage.DocumentRecord{
			RelativePath: entry.RelativePath,
			Term:         entry.Term,
			Topic:        entry.Topic,
			Title:        entry.Title,
			DisplayName:  entry.DisplayName,
			Fingerprint:  fingerprint,
			Status:       storage.StatusFailed,
			LastError:    cause.Error(),
		})
	}
	return failed(cause)
}
