package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Provider configuration
const (
	ProviderOpenAI = "openai"
	ProviderJina   = "jina"
	ProviderLocal  = "local"

	// Default models
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultJinaModel   = "jina-embeddings-v3"

	// Dimensions
	OpenAIDimension = 1536
	JinaDimension   = 1024
	LocalDimension  = 384

	// Batch limits
	DefaultBatchSize = 50
	MaxBatchSize     = 100

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

const (
	openAIEndpoint = "https://api.openai.com/v1/embeddings"
	jinaEndpoint   = "https://api.jina.ai/v1/embeddings"
)

// httpProvider implements Embedder against an OpenAI-compatible embeddings
// API. Both OpenAI and Jina speak the same request/response shape.
type httpProvider struct {
	provider   string
	endpoint   string
	apiKey     string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates an embedder backed by the OpenAI embeddings API.
func NewOpenAIProvider(apiKey string, cache *Cache) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrNoProviderEnabled)
	}
	return &httpProvider{
		provider:   ProviderOpenAI,
		endpoint:   openAIEndpoint,
		apiKey:     apiKey,
		model:      DefaultOpenAIModel,
		dimension:  OpenAIDimension,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
	}, nil
}

// NewJinaProvider creates an embedder backed by the Jina AI embeddings API.
func NewJinaProvider(apiKey string, cache *Cache) (Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: JINA_API_KEY not set", ErrNoProviderEnabled)
	}
	return &httpProvider{
		provider:   ProviderJina,
		endpoint:   jinaEndpoint,
		apiKey:     apiKey,
		model:      DefaultJinaModel,
		dimension:  JinaDimension,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
	}, nil
}

func (p *httpProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if p.cache != nil {
		if vec, ok := p.cache.Get(ComputeHash(text)); ok {
			return vec, nil
		}
	}

	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrProviderFailed)
	}
	return vectors[0], nil
}

func (p *httpProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		return p.callAPI(ctx, texts)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, config.MaxRetries, err)
	}

	if p.cache != nil {
		for i, vec := range vectors {
			p.cache.Set(ComputeHash(texts[i]), vec)
		}
	}

	return vectors, nil
}

func (p *httpProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": p.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for _, data := range apiResp.Data {
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}

func (p *httpProvider) Dimension() int {
	return p.dimension
}

func (p *httpProvider) Provider() string {
	return p.provider
}

func (p *httpProvider) Model() string {
	return p.model
}

func (p *httpProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider is a deterministic offline embedder. Vectors are derived
// from the text's SHA-256 digest: not semantically meaningful, but stable
// across runs, which is all the tests and offline development need.
type LocalProvider struct {
	model string
	cache *Cache
}

// NewLocalProvider creates a local embedder.
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{model: "local-embeddings", cache: cache}, nil
}

func (l *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(text)
	if l.cache != nil {
		if vec, ok := l.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vector := make([]float32, LocalDimension)
	digest := sha256.Sum256([]byte(text))
	for i := range vector {
		vector[i] = float32(digest[i%len(digest)]) / 255.0
	}
	vector = NormalizeVector(vector)

	if l.cache != nil {
		l.cache.Set(hash, vector)
	}
	return vector, nil
}

func (l *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := l.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (l *LocalProvider) Dimension() int {
	return LocalDimension
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return l.model
}

func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length for cosine similarity.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
