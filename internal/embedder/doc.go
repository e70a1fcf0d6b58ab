// Package embedder is the embedding gateway: it turns text into fixed-length
// vectors via a remote provider (OpenAI, Jina) or a deterministic local
// fallback.
//
// Provider calls are the dominant latency and failure source of ingestion, so
// every remote call runs with bounded exponential-backoff retry and respects
// context cancellation. Successful embeddings are cached in-memory by content
// hash so re-ingesting overlapping material does not re-bill the provider.
package embedder
