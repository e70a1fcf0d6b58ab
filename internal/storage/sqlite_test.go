package storage

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testDocument(relativePath string) *DocumentRecord {
	return &DocumentRecord{
		RelativePath: relativePath,
		Term:         "fall-2025",
		Topic:        "algorithms",
		Title:        "clrs",
		DisplayName:  "notes.txt",
		Fingerprint:  sha256.Sum256([]byte(relativePath)),
		Status:       StatusPending,
	}
}

func TestUpsertAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	assert.NotZero(t, doc.ID)

	got, err := store.GetDocument(ctx, doc.RelativePath)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "fall-2025", got.Term)
	assert.Equal(t, "algorithms", got.Topic)
	assert.Equal(t, "clrs", got.Title)
	assert.Equal(t, doc.Fingerprint, got.Fingerprint)
	assert.Equal(t, StatusPending, got.Status)
}

func TestUpsertDocumentIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	firstID := doc.ID

	// Re-observing the same path updates in place, no new row
	doc.Fingerprint = sha256.Sum256([]byte("changed"))
	require.NoError(t, store.UpsertDocument(ctx, doc))
	assert.Equal(t, firstID, doc.ID)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, sha256.Sum256([]byte("changed")), docs[0].Fingerprint)
}

func TestGetDocumentNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), "missing/path/title/doc.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	fp := sha256.Sum256([]byte("content"))
	err := store.MarkDocument(ctx, doc.RelativePath, Mark{
		Status:      StatusCompleted,
		Fingerprint: fp,
		ChunkCount:  7,
	})
	require.NoError(t, err)

	got, err := store.GetDocument(ctx, doc.RelativePath)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, fp, got.Fingerprint)
	assert.Equal(t, 7, got.ChunkCount)
	assert.Empty(t, got.LastError)
}

func TestMarkDocumentRecordsFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/broken.pdf")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	err := store.MarkDocument(ctx, doc.RelativePath, Mark{
		Status:      StatusFailed,
		Fingerprint: doc.Fingerprint,
		LastError:   "pdftotext: damaged xref table",
	})
	require.NoError(t, err)

	got, err := store.GetDocument(ctx, doc.RelativePath)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "pdftotext: damaged xref table", got.LastError)
}

func TestMarkDocumentNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkDocument(context.Background(), "missing/path/title/doc.txt", Mark{Status: StatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	chunks := []ChunkWithVector{
		{Text: "first window", PageIndex: 0, Ordinal: 0, Vector: []float32{1, 0, 0}, Provider: "local", Model: "deterministic"},
		{Text: "second window", PageIndex: 1, Ordinal: 1, Vector: []float32{0, 1, 0}, Provider: "local", Model: "deterministic"},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, chunks))

	stored, err := store.ListChunks(ctx, doc.RelativePath)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "first window", stored[0].Text)
	assert.Equal(t, 0, stored[0].Ordinal)
	assert.Equal(t, "second window", stored[1].Text)
	assert.Equal(t, 1, stored[1].PageIndex)
	assert.Equal(t, "fall-2025", stored[0].Term)
}

func TestReplaceChunksSwapsOldForNew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))

	old := []ChunkWithVector{
		{Text: "stale a", Ordinal: 0, Vector: []float32{1, 0}},
		{Text: "stale b", Ordinal: 1, Vector: []float32{0, 1}},
		{Text: "stale c", Ordinal: 2, Vector: []float32{1, 1}},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, old))

	fresh := []ChunkWithVector{
		{Text: "fresh", Ordinal: 0, Vector: []float32{1, 0}},
	}
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, fresh))

	stored, err := store.ListChunks(ctx, doc.RelativePath)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "fresh", stored[0].Text)

	// Old embeddings are gone too
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embeddings)
}

func TestReplaceChunksUnknownDocument(t *testing.T) {
	store := newTestStore(t)

	err := store.ReplaceChunks(context.Background(), "missing/path/title/doc.txt", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, []ChunkWithVector{
		{Text: "window", Ordinal: 0, Vector: []float32{1}},
	}))

	require.NoError(t, store.DeleteChunks(ctx, doc.RelativePath))

	stored, err := store.ListChunks(ctx, doc.RelativePath)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Ledger row survives chunk deletion
	_, err = store.GetDocument(ctx, doc.RelativePath)
	require.NoError(t, err)
}

func TestDeleteDocumentCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, []ChunkWithVector{
		{Text: "window", Ordinal: 0, Vector: []float32{1}},
	}))

	require.NoError(t, store.DeleteDocument(ctx, doc.RelativePath))

	_, err := store.GetDocument(ctx, doc.RelativePath)
	assert.ErrorIs(t, err, ErrNotFound)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.Embeddings)
}

func TestGetChunk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, []ChunkWithVector{
		{Text: "window", PageIndex: 3, Ordinal: 0, Vector: []float32{1}},
	}))

	stored, err := store.ListChunks(ctx, doc.RelativePath)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	chunk, err := store.GetChunk(ctx, stored[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "window", chunk.Text)
	assert.Equal(t, 3, chunk.PageIndex)
	assert.Equal(t, "clrs", chunk.Title)

	_, err = store.GetChunk(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogListings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []struct{ term, topic, title, file string }{
		{"fall-2025", "algorithms", "clrs", "ch1.txt"},
		{"fall-2025", "algorithms", "sedgewick", "ch1.txt"},
		{"fall-2025", "databases", "cow-book", "ch1.txt"},
		{"spring-2026", "compilers", "dragon-book", "ch1.txt"},
	}
	for _, s := range seed {
		doc := &DocumentRecord{
			RelativePath: s.term + "/" + s.topic + "/" + s.title + "/" + s.file,
			Term:         s.term,
			Topic:        s.topic,
			Title:        s.title,
			DisplayName:  s.file,
			Fingerprint:  sha256.Sum256([]byte(s.file)),
		}
		require.NoError(t, store.UpsertDocument(ctx, doc))
	}

	terms, err := store.ListTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fall-2025", "spring-2026"}, terms)

	topics, err := store.ListTopics(ctx, "fall-2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"algorithms", "databases"}, topics)

	allTopics, err := store.ListTopics(ctx, "")
	require.NoError(t, err)
	assert.Len(t, allTopics, 3)

	titles, err := store.ListTitles(ctx, "fall-2025", "algorithms")
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "clrs", titles[0].Title)
	assert.Equal(t, "sedgewick", titles[1].Title)

	allTitles, err := store.ListTitles(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, allTitles, 4)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDocument("fall-2025/algorithms/clrs/notes.txt")
	require.NoError(t, store.UpsertDocument(ctx, doc))
	require.NoError(t, store.ReplaceChunks(ctx, doc.RelativePath, []ChunkWithVector{
		{Text: "a", Ordinal: 0, Vector: []float32{1}},
		{Text: "b", Ordinal: 1, Vector: []float32{0}},
	}))
	require.NoError(t, store.MarkDocument(ctx, doc.RelativePath, Mark{
		Status: StatusCompleted, Fingerprint: doc.Fingerprint, ChunkCount: 2,
	}))

	failed := testDocument("fall-2025/algorithms/clrs/broken.pdf")
	failed.Status = StatusFailed
	require.NoError(t, store.UpsertDocument(ctx, failed))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 2, stats.Embeddings)
	assert.Equal(t, 1, stats.ByStatus[StatusCompleted])
	assert.Equal(t, 1, stats.ByStatus[StatusFailed])
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening applies migrations against an existing schema
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
