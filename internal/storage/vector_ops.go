package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// serializeVector converts a float32 slice to a little-endian byte blob.
func serializeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector converts a byte blob back to a float32 slice.
func deserializeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("invalid vector blob length %d", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched dimensions or zero-magnitude vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// searchVector dispatches to the in-database path when the sqlite-vec
// extension is compiled in, falling back to Go-side scoring otherwise.
// Both paths order results by similarity descending, breaking ties by
// ascending (relative_path, page_index, ordinal) so equal-score results
// are stable across runs.
func searchVector(ctx context.Context, db *sql.DB, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}
	if limit <= 0 {
		limit = 10
	}

	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, vector, limit, filters)
	}
	return searchVectorFallback(ctx, db, vector, limit, filters)
}

// applyScopeFilters appends WHERE conditions for a hierarchy scope.
func applyScopeFilters(conds []string, args []interface{}, filters *SearchFilters) ([]string, []interface{}) {
	if filters == nil {
		return conds, args
	}
	if filters.Term != "" {
		conds = append(conds, "d.term = ?")
		args = append(args, filters.Term)
	}
	if filters.Topic != "" {
		conds = append(conds, "d.topic = ?")
		args = append(args, filters.Topic)
	}
	if len(filters.Titles) > 0 {
		placeholders := strings.Repeat("?,", len(filters.Titles))
		conds = append(conds, "d.title IN ("+placeholders[:len(placeholders)-1]+")")
		for _, t := range filters.Titles {
			args = append(args, t)
		}
	}
	return conds, args
}

// searchVectorOptimized scores candidates inside SQLite via sqlite-vec.
func searchVectorOptimized(ctx context.Context, db *sql.DB, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	conds := []string{"e.dimension = ?"}
	args := []interface{}{serializeVector(vector), len(vector)}
	conds, args = applyScopeFilters(conds, args, filters)
	args = append(args, limit)

	query := `
		SELECT c.id, 1.0 - vec_distance_cosine(e.vector, ?) AS similarity,
		       d.relative_path, c.page_index, c.ordinal
		FROM embeddings e
		INNER JOIN chunks c ON e.chunk_id = c.id
		INNER JOIN documents d ON c.document_id = d.id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY similarity DESC, d.relative_path, c.page_index, c.ordinal
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []VectorResult
	for rows.Next() {
		var r VectorResult
		if err := rows.Scan(&r.ChunkID, &r.Score, &r.RelativePath, &r.PageIndex, &r.Ordinal); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// searchVectorFallback loads candidate vectors and scores them in Go.
func searchVectorFallback(ctx context.Context, db *sql.DB, vector []float32, limit int, filters *SearchFilters) ([]VectorResult, error) {
	conds := []string{"e.dimension = ?"}
	args := []interface{}{len(vector)}
	conds, args = applyScopeFilters(conds, args, filters)

	query := `
		SELECT c.id, e.vector, d.relative_path, c.page_index, c.ordinal
		FROM embeddings e
		INNER JOIN chunks c ON e.chunk_id = c.id
		INNER JOIN documents d ON c.document_id = d.id
		WHERE ` + strings.Join(conds, " AND ")

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []VectorResult
	for rows.Next() {
		var r VectorResult
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &blob, &r.RelativePath, &r.PageIndex, &r.Ordinal); err != nil {
			return nil, err
		}
		stored, err := deserializeVector(blob)
		if err != nil {
			continue // Corrupt blobs are skipped, not fatal
		}
		r.Score = cosineSimilarity(vector, stored)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].RelativePath != results[j].RelativePath {
			return results[i].RelativePath < results[j].RelativePath
		}
		if results[i].PageIndex != results[j].PageIndex {
			return results[i].PageIndex < results[j].PageIndex
		}
		return results[i].Ordinal < results[j].Ordinal
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
