package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/studyrag-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested record doesn't exist.
	ErrNotFound = errors.New("not found")
)

// Status is the ingestion state of a document in the ledger.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DocumentRecord is one ingestion ledger row, keyed by RelativePath.
// Invariant: a completed record's fingerprint matches the chunks currently
// stored for the document.
type DocumentRecord struct {
	ID           int64
	RelativePath string
	Term         string
	Topic        string
	Title        string
	DisplayName  string
	Fingerprint  [32]byte
	Status       Status
	ChunkCount   int
	LastError    string // Empty when the last run succeeded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Mark is an atomic ledger status update.
type Mark struct {
	Status      Status
	Fingerprint [32]byte
	ChunkCount  int
	LastError   string
}

// ChunkRecord is a stored chunk joined with its document's hierarchy
// metadata.
type ChunkRecord struct {
	ID           int64
	DocumentID   int64
	RelativePath string
	Term         string
	Topic        string
	Title        string
	Text         string
	PageIndex    int
	Ordinal      int
}

// ToChunk converts the record to the shared domain type.
func (c *ChunkRecord) ToChunk() types.Chunk {
	return types.Chunk{
		ID:           c.ID,
		Term:         c.Term,
		Topic:        c.Topic,
		Title:        c.Title,
		RelativePath: c.RelativePath,
		Text:         c.Text,
		PageIndex:    c.PageIndex,
		Ordinal:      c.Ordinal,
	}
}

// ChunkWithVector is the insert unit for ReplaceChunks: one chunk and its
// embedding.
type ChunkWithVector struct {
	Text      string
	PageIndex int
	Ordinal   int
	Vector    []float32
	Provider  string
	Model     string
}

// SearchFilters narrows a vector search to a hierarchy scope. Zero-valued
// fields impose no constraint; a nil *SearchFilters matches everything.
type SearchFilters struct {
	Term   string
	Topic  string
	Titles []string
}

// VectorResult is one similarity hit. Provenance fields are included so
// callers can apply the deterministic (path, page, ordinal) tie-break.
type VectorResult struct {
	ChunkID      int64
	Score        float64
	RelativePath string
	PageIndex    int
	Ordinal      int
}

// TitleEntry is one title in a catalog listing.
type TitleEntry struct {
	Term  string
	Topic string
	Title string
}

// IndexStats summarizes ledger and index contents.
type IndexStats struct {
	Documents  int
	ByStatus   map[Status]int
	Chunks     int
	Embeddings int
}

// Store is the persistence interface consumed by the ingestion pipeline,
// retriever, and catalog.
type Store interface {
	// Ledger operations
	UpsertDocument(ctx context.Context, doc *DocumentRecord) error
	GetDocument(ctx context.Context, relativePath string) (*DocumentRecord, error)
	ListDocuments(ctx context.Context) ([]*DocumentRecord, error)
	MarkDocument(ctx context.Context, relativePath string, mark Mark) error
	DeleteDocument(ctx context.Context, relativePath string) error

	// Index operations
	ReplaceChunks(ctx context.Context, relativePath string, chunks []ChunkWithVector) error
	DeleteChunks(ctx context.Context, relativePath string) error
	GetChunk(ctx context.Context, chunkID int64) (*ChunkRecord, error)
	ListChunks(ctx context.Context, relativePath string) ([]*ChunkRecord, error)
	SearchVector(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error)

	// Catalog operations
	ListTerms(ctx context.Context) ([]string, error)
	ListTopics(ctx context.Context, term string) ([]string, error)
	ListTitles(ctx context.Context, term, topic string) ([]TitleEntry, error)
	Stats(ctx context.Context) (*IndexStats, error)

	Close() error
}
