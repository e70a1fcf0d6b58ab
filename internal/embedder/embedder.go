package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnknownProvider   = errors.New("unknown embedding provider")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedder converts text into fixed-length vectors.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one provider
	// call where the provider supports it. Result order matches input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector length this provider produces.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Model returns the model name.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache is an in-memory LRU cache of embeddings keyed by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// DefaultCacheSize is the default number of cached embeddings.
const DefaultCacheSize = 10000

// NewCache creates an embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		cache, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of a cached vector so caller mutations cannot corrupt
// the cache.
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector in the cache.
func (c *Cache) Set(hash string, vec []float32) {
	c.cache.Add(hash, vec)
}

// Size returns the current number of cached vectors.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// ComputeHash returns the SHA-256 hex digest of text, used as the cache key.
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// validateTexts rejects empty inputs before they reach a provider.
func validateTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrEmptyText)
	}
	for i, t := range texts {
		if t == "" {
			return fmt.Errorf("%w: text at index %d", ErrEmptyText, i)
		}
	}
	return nil
}
