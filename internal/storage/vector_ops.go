package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/viant/vec/search"
)

// searchVector scans the table and ranks rows by cosine distance to the query
func searchVector(ctx context.Context, q querier, table *Table, queryVector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return []Hit{}, nil
	}
	if len(queryVector) != table.Dimension {
		return nil, fmt.Errorf("%w: query has %d values, table %q has dimension %d",
			ErrDimensionMismatch, len(queryVector), table.Name, table.Dimension)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, text, metadata, vector
		FROM records
		WHERE table_name = ?
		ORDER BY seq
	`, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits, err := computeDistances(rows, queryVector)
	if err != nil {
		return nil, err
	}

	sortHits(hits)

	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// computeDistances processes rows and computes cosine distance to the query
func computeDistances(rows *sql.Rows, queryVector []float32) ([]Hit, error) {
	query := search.Float32s(queryVector)
	queryMagnitude := query.Magnitude()

	hits := make([]Hit, 0, 256)
	for rows.Next() {
		var (
			hit        Hit
			metadata   sql.NullString
			vectorBlob []byte
		)
		if err := rows.Scan(&hit.ID, &hit.Text, &metadata, &vectorBlob); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		hit.Metadata = metadata.String

		vector := deserializeVector(vectorBlob)
		if len(vector) != len(queryVector) {
			return nil, fmt.Errorf("%w: record %s has %d values, expected %d",
				ErrDimensionMismatch, hit.ID, len(vector), len(queryVector))
		}

		hit.Distance = cosineDistance(query, queryMagnitude, vector)
		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// cosineDistance returns 1 - cosine similarity. A zero-magnitude operand has
// no direction, so it is treated as orthogonal (distance 1). The check runs
// here because the arm64 kernel does not guard zero or empty inputs.
func cosineDistance(query search.Float32s, queryMagnitude float32, vector []float32) float32 {
	if queryMagnitude == 0 || search.Float32s(vector).Magnitude() == 0 {
		return 1
	}
	return query.CosineDistance(vector)
}

// sortHits sorts hits by distance in ascending order.
// The sort is stable so equal distances keep insertion order.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineDistance is an exported helper for testing
func CosineDistance(a, b []float32) float32 {
	q := search.Float32s(a)
	return cosineDistance(q, q.Magnitude(), b)
}
