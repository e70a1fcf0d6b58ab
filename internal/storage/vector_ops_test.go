package storage

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorSerializationRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.14159, 0, 1e-8}

	blob := serializeVector(original)
	assert.Len(t, blob, len(original)*4)

	restored, err := deserializeVector(blob)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDeserializeVectorRejectsBadLength(t *testing.T) {
	_, err := deserializeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched dimensions and zero vectors score zero
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func seedSearchFixture(t *testing.T, store *SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	seed := []struct {
		term, topic, title, file string
		chunks                   []ChunkWithVector
	}{
		{"fall-2025", "algorithms", "clrs", "sorting.txt", []ChunkWithVector{
			{Text: "quicksort partitions around a pivot", PageIndex: 0, Ordinal: 0, Vector: []float32{1, 0, 0}},
			{Text: "merge sort splits and merges", PageIndex: 1, Ordinal: 1, Vector: []float32{0.9, 0.1, 0}},
		}},
		{"fall-2025", "databases", "cow-book", "indexes.txt", []ChunkWithVector{
			{Text: "b-trees keep keys sorted", PageIndex: 0, Ordinal: 0, Vector: []float32{0, 1, 0}},
		}},
		{"spring-2026", "compilers", "dragon-book", "parsing.txt", []ChunkWithVector{
			{Text: "recursive descent parsing", PageIndex: 0, Ordinal: 0, Vector: []float32{0, 0, 1}},
		}},
	}
	for _, s := range seed {
		rel := s.term + "/" + s.topic + "/" + s.title + "/" + s.file
		doc := &DocumentRecord{
			RelativePath: rel,
			Term:         s.term,
			Topic:        s.topic,
			Title:        s.title,
			DisplayName:  s.file,
			Fingerprint:  sha256.Sum256([]byte(rel)),
		}
		require.NoError(t, store.UpsertDocument(ctx, doc))
		require.NoError(t, store.ReplaceChunks(ctx, rel, s.chunks))
	}
}

func TestSearchVectorRanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "fall-2025/algorithms/clrs/sorting.txt", results[0].RelativePath)
	assert.Equal(t, 0, results[0].Ordinal)
	assert.Equal(t, 1, results[1].Ordinal)

	// Scores are non-increasing
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchVectorRespectsLimit(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchVectorTermFilter(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 1, 1}, 10,
		&SearchFilters{Term: "spring-2026"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "spring-2026/compilers/dragon-book/parsing.txt", results[0].RelativePath)
}

func TestSearchVectorTermTopicFilter(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 1, 1}, 10,
		&SearchFilters{Term: "fall-2025", Topic: "databases"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fall-2025/databases/cow-book/indexes.txt", results[0].RelativePath)
}

func TestSearchVectorTitleFilter(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 1, 1}, 10,
		&SearchFilters{Term: "fall-2025", Titles: []string{"clrs"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "fall-2025/algorithms/clrs/sorting.txt", r.RelativePath)
	}
}

func TestSearchVectorNoMatches(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	results, err := store.SearchVector(context.Background(), []float32{1, 0, 0}, 10,
		&SearchFilters{Term: "summer-2030"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchVectorDeterministicTieBreak(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Two documents with identical vectors force a score tie
	for _, rel := range []string{
		"fall-2025/algorithms/zeta/doc.txt",
		"fall-2025/algorithms/alpha/doc.txt",
	} {
		doc := &DocumentRecord{
			RelativePath: rel,
			Term:         "fall-2025",
			Topic:        "algorithms",
			Title:        "x",
			Fingerprint:  sha256.Sum256([]byte(rel)),
		}
		require.NoError(t, store.UpsertDocument(ctx, doc))
		require.NoError(t, store.ReplaceChunks(ctx, rel, []ChunkWithVector{
			{Text: "same", PageIndex: 0, Ordinal: 0, Vector: []float32{1, 0}},
		}))
	}

	for i := 0; i < 3; i++ {
		results, err := store.SearchVector(ctx, []float32{1, 0}, 10, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "fall-2025/algorithms/alpha/doc.txt", results[0].RelativePath)
		assert.Equal(t, "fall-2025/algorithms/zeta/doc.txt", results[1].RelativePath)
	}
}

func TestSearchVectorDimensionMismatchExcluded(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixture(t, store)

	// Stored vectors are 3-dimensional; a 2-dimensional query matches none
	results, err := store.SearchVector(context.Background(), []float32{1, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchVectorEmptyQueryVector(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SearchVector(context.Background(), nil, 10, nil)
	assert.Error(t, err)
}
