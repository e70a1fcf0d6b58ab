package retriever

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/studyrag-mcp/pkg/types"
)

const (
	// DefaultCacheSize is the default number of cached query responses.
	DefaultCacheSize = 256

	// cacheTTL bounds how long a cached response stays valid.
	cacheTTL = 5 * time.Minute
)

type cachedResponse struct {
	results   []types.RetrievedChunk
	expiresAt time.Time
}

// responseCache is an LRU of query responses with per-entry expiry.
type responseCache struct {
	cache *lru.Cache[string, cachedResponse]
}

func newResponseCache(size int) *responseCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cachedResponse](size)
	if err != nil {
		cache, _ = lru.New[string, cachedResponse](DefaultCacheSize)
	}
	return &responseCache{cache: cache}
}

func (c *responseCache) Get(key string) ([]types.RetrievedChunk, bool) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}
	out := make([]types.RetrievedChunk, len(entry.results))
	copy(out, entry.results)
	return out, true
}

func (c *responseCache) Set(key string, results []types.RetrievedChunk) {
	stored := make([]types.RetrievedChunk, len(results))
	copy(stored, results)
	c.cache.Add(key, cachedResponse{
		results:   stored,
		expiresAt: time.Now().Add(cacheTTL),
	})
}

func (c *responseCache) Purge() {
	c.cache.Purge()
}

// cacheKey derives a stable key from the query, scope, and limit.
func cacheKey(query string, s types.ScopeState, limit int) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%d",
		query, s.Term, s.Topic, strings.Join(s.Titles, "\x1f"), limit)))
	return hex.EncodeToString(h[:])
}
