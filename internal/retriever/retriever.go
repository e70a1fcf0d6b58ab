package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/studyrag-mcp/internal/embedder"
	"github.com/dshills/studyrag-mcp/internal/scope"
	"github.com/dshills/studyrag-mcp/internal/storage"
	"github.com/dshills/studyrag-mcp/pkg/types"
)

const (
	// DefaultLimit is the number of chunks returned when the caller doesn't
	// specify one.
	DefaultLimit = 5

	// MaxLimit caps how many chunks a single query may request.
	MaxLimit = 100
)

// Retriever turns natural-language queries into ranked chunk results.
type Retriever struct {
	store    storage.Store
	embedder embedder.Embedder
	cache    *responseCache
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithCacheSize sets the response cache capacity.
func WithCacheSize(n int) Option {
	return func(r *Retriever) { r.cache = newResponseCache(n) }
}

// New creates a Retriever over the given store and embedder.
func New(store storage.Store, emb embedder.Embedder, opts ...Option) *Retriever {
	r := &Retriever{
		store:    store,
		embedder: emb,
		cache:    newResponseCache(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns up to limit chunks relevant to the query within the given
// scope, ranked by similarity. An empty result is not an error; it means
// nothing in scope matched. A limit below one falls back to DefaultLimit.
func (r *Retriever) Retrieve(ctx context.Context, query string, s types.ScopeState, limit int) ([]types.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	key := cacheKey(query, s, limit)
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &types.EmbeddingError{Provider: r.embedder.Provider(), Err: err}
	}

	hits, err := r.store.SearchVector(ctx, vector, limit, scope.Resolve(s))
	if err != nil {
		return nil, &types.IndexQueryError{Err: err}
	}

	results := make([]types.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		record, err := r.store.GetChunk(ctx, hit.ChunkID)
		if err == storage.ErrNotFound {
			continue // Chunk replaced between search and fetch
		}
		if err != nil {
			return nil, &types.IndexQueryError{Err: err}
		}
		results = append(results, types.RetrievedChunk{
			Chunk: record.ToChunk(),
			Score: hit.Score,
			Rank:  len(results) + 1,
		})
	}

	r.cache.Set(key, results)
	return results, nil
}

// InvalidateCache drops all cached responses. Called after ingestion so
// fresh index contents are visible immediately.
func (r *Retriever) InvalidateCache() {
	r.cache.Purge()
}
