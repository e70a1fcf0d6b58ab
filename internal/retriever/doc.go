// Package retriever answers scoped similarity queries: it embeds the query
// text, searches the vector index under the caller's scope, and returns
// ranked chunks with provenance. Responses are cached with a short TTL; the
// cache is invalidated after ingestion runs.
package retriever
