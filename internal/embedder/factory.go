package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvProvider     = "STUDYRAG_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvJinaAPIKey   = "JINA_API_KEY"
)

// Config holds explicit embedder configuration.
type Config struct {
	Provider  string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates an embedder from environment variables.
// Priority:
//  1. STUDYRAG_EMBEDDING_PROVIDER (openai, jina, local)
//  2. Auto-detect from OPENAI_API_KEY / JINA_API_KEY
//  3. Fall back to the local provider
func NewFromEnv() (Embedder, error) {
	provider := strings.ToLower(os.Getenv(EnvProvider))
	openaiKey := os.Getenv(EnvOpenAIAPIKey)
	jinaKey := os.Getenv(EnvJinaAPIKey)

	cache := NewCache(DefaultCacheSize)

	if provider != "" {
		switch provider {
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, cache)
		case ProviderJina:
			return NewJinaProvider(jinaKey, cache)
		case ProviderLocal:
			return NewLocalProvider(cache)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
		}
	}

	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, cache)
	}
	if jinaKey != "" {
		return NewJinaProvider(jinaKey, cache)
	}

	return NewLocalProvider(cache)
}

// New creates an embedder with explicit configuration.
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cache)
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider NewFromEnv would select.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	return ProviderLocal
}
