package storage

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeVector(t *testing.T) {
	vector := []float32{0, 1.5, -2.25, math.MaxFloat32, math.SmallestNonzeroFloat32}
	blob := SerializeVector(vector)
	assert.Len(t, blob, len(vector)*4)
	assert.Equal(t, vector, DeserializeVector(blob))

	// little-endian 1.0
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, SerializeVector([]float32{1}))
}

func TestCosineDistance(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero query", []float32{0, 0}, []float32{1, 0}, 1},
		{"zero record", []float32{1, 0}, []float32{0, 0}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, CosineDistance(tc.a, tc.b), 1e-5)
		})
	}
}

// naiveCosineDistance is the reference the kernel is checked against
func naiveCosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func TestCosineDistance_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, dim := range []int{1, 3, 4, 7, 16, 33, 384} {
		t.Run(fmt.Sprintf("dim_%d", dim), func(t *testing.T) {
			for n := 0; n < 20; n++ {
				a := make([]float32, dim)
				b := make([]float32, dim)
				for i := range a {
					a[i] = rng.Float32()*2 - 1
					b[i] = rng.Float32()*2 - 1
				}
				assert.InDelta(t, naiveCosineDistance(a, b), float64(CosineDistance(a, b)), 1e-4)
			}
		})
	}
}

func TestCosineDistance_EmptyVectors(t *testing.T) {
	assert.Equal(t, float32(1), CosineDistance(nil, nil))
	assert.Equal(t, float32(1), CosineDistance([]float32{}, []float32{}))
}

func TestSearchVector_Ordering(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	table, err := storage.CreateTable(ctx, "docs", 2)
	require.NoError(t, err)

	rows := map[string][]float32{
		"far":   {-1, 0},
		"near":  {1, 0.1},
		"exact": {1, 0},
		"side":  {0, 1},
	}
	require.NoError(t, storage.Append(ctx, table,
		buildBatch(t, 2, rows, []string{"far", "near", "exact", "side"})))

	hits, err := storage.SearchVector(ctx, table, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].ID)
	assert.Equal(t, "near", hits[1].ID)
	assert.Equal(t, "side", hits[2].ID)

	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
}

func TestSearchVector_TiesKeepInsertionOrder(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	table, err := storage.CreateTable(ctx, "docs", 2)
	require.NoError(t, err)

	order := []string{"c", "a", "b"}
	rows := map[string][]float32{"c": {1, 1}, "a": {1, 1}, "b": {1, 1}}
	require.NoError(t, storage.Append(ctx, table, buildBatch(t, 2, rows, order)))

	hits, err := storage.SearchVector(ctx, table, []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i, id := range order {
		assert.Equal(t, id, hits[i].ID)
	}
}

// TestVectorSearchEdgeCases tests edge cases and error conditions
func TestVectorSearchEdgeCases(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	table, err := storage.CreateTable(ctx, "docs", 3)
	require.NoError(t, err)
	empty, err := storage.CreateTable(ctx, "empty", 3)
	require.NoError(t, err)

	require.NoError(t, storage.Append(ctx, table,
		buildBatch(t, 3, map[string][]float32{"1": {1, 0, 0}}, []string{"1"})))

	testCases := []struct {
		name        string
		table       *Table
		queryVector []float32
		limit       int
		expectError bool
		expectCount int
	}{
		{
			name:        "zero limit",
			table:       table,
			queryVector: []float32{1, 0, 0},
			limit:       0,
		},
		{
			name:        "negative limit",
			table:       table,
			queryVector: []float32{1, 0, 0},
			limit:       -1,
		},
		{
			name:        "empty table",
			table:       empty,
			queryVector: []float32{1, 0, 0},
			limit:       10,
		},
		{
			name:        "limit larger than table",
			table:       table,
			queryVector: []float32{1, 0, 0},
			limit:       10,
			expectCount: 1,
		},
		{
			name:        "wrong query dimension",
			table:       table,
			queryVector: []float32{1, 0},
			limit:       10,
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := storage.SearchVector(ctx, tc.table, tc.queryVector, tc.limit)

			if tc.expectError {
				assert.ErrorIs(t, err, ErrDimensionMismatch)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Len(t, results, tc.expectCount)
		})
	}
}

func BenchmarkSearchVector(b *testing.B) {
	for _, size := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("records=%d", size), func(b *testing.B) {
			storage, err := NewSQLiteStorage(":memory:")
			if err != nil {
				b.Fatal(err)
			}
			defer storage.Close()

			ctx := context.Background()
			const dim = 256
			table, err := storage.CreateTable(ctx, "bench", dim)
			if err != nil {
				b.Fatal(err)
			}

			rng := rand.New(rand.NewSource(42))
			builder := NewBatchBuilder(dim, size)
			for i := 0; i < size; i++ {
				vector := make([]float32, dim)
				for j := range vector {
					vector[j] = rng.Float32()
				}
				if err := builder.Append(fmt.Sprintf("r%d", i), "text", vector, nil); err != nil {
					b.Fatal(err)
				}
			}
			if err := storage.Append(ctx, table, builder.Finish()); err != nil {
				b.Fatal(err)
			}

			query := make([]float32, dim)
			for j := range query {
				query[j] = rng.Float32()
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := storage.SearchVector(ctx, table, query, 10); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
