// Package catalog exposes browsable listings of the indexed hierarchy:
// which terms, topics, and titles the index currently holds, plus overall
// index status.
package catalog

import (
	"context"

	"github.com/dshills/studyrag-mcp/internal/storage"
)

// Title is one title listing with its position in the hierarchy.
type Title struct {
	Term  string `json:"term"`
	Topic string `json:"topic"`
	Title string `json:"title"`
}

// DocumentStatus is one ledger entry in a status listing.
type DocumentStatus struct {
	RelativePath string `json:"relative_path"`
	Status       string `json:"status"`
	ChunkCount   int    `json:"chunk_count"`
	LastError    string `json:"last_error,omitempty"`
}

// Overview summarizes the index for status reporting.
type Overview struct {
	Documents  int            `json:"documents"`
	Chunks     int            `json:"chunks"`
	Embeddings int            `json:"embeddings"`
	ByStatus   map[string]int `json:"by_status"`
}

// Catalog answers listing queries against the store.
type Catalog struct {
	store storage.Store
}

// New creates a Catalog over the given store.
func New(store storage.Store) *Catalog {
	return &Catalog{store: store}
}

// Terms lists every term present in the index, sorted.
func (c *Catalog) Terms(ctx context.Context) ([]string, error) {
	return c.store.ListTerms(ctx)
}

// Topics lists the topics under a term, or all topics when term is empty.
func (c *Catalog) Topics(ctx context.Context, term string) ([]string, error) {
	return c.store.ListTopics(ctx, term)
}

// Titles lists titles, optionally narrowed to a term and/or topic.
func (c *Catalog) Titles(ctx context.Context, term, topic string) ([]Title, error) {
	entries, err := c.store.ListTitles(ctx, term, topic)
	if err != nil {
		return nil, err
	}
	titles := make([]Title, len(entries))
	for i, e := range entries {
		titles[i] = Title{Term: e.Term, Topic: e.Topic, Title: e.Title}
	}
	return titles, nil
}

// Documents lists every ledger entry with its ingestion state.
func (c *Catalog) Documents(ctx context.Context) ([]DocumentStatus, error) {
	records, err := c.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]DocumentStatus, len(records))
	for i, r := range records {
		docs[i] = DocumentStatus{
			RelativePath: r.RelativePath,
			Status:       string(r.Status),
			ChunkCount:   r.ChunkCount,
			LastError:    r.LastError,
		}
	}
	return docs, nil
}

// Status returns an index overview.
func (c *Catalog) Status(ctx context.Context) (*Overview, error) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return &Overview{
		Documents:  stats.Documents,
		Chunks:     stats.Chunks,
		Embeddings: stats.Embeddings,
		ByStatus:   byStatus,
	}, nil
}
