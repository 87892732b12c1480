package storage

import (
	"database/sql"
	"fmt"
)

// RecordBatch is a columnar group of rows appended in a single write.
// Vectors are stored flat: row i occupies Vectors[i*Dimension:(i+1)*Dimension].
type RecordBatch struct {
	Dimension int
	IDs       []string
	Texts     []string
	Vectors   []float32
	Metadata  []sql.NullString
}

// NumRows returns the number of rows in the batch
func (b *RecordBatch) NumRows() int {
	return len(b.IDs)
}

// Vector returns the vector of row i
func (b *RecordBatch) Vector(i int) []float32 {
	return b.Vectors[i*b.Dimension : (i+1)*b.Dimension]
}

// BatchBuilder accumulates rows into a RecordBatch of fixed vector width
type BatchBuilder struct {
	batch *RecordBatch
}

// NewBatchBuilder creates a builder for vectors of the given width
func NewBatchBuilder(dimension, capacity int) *BatchBuilder {
	if capacity < 0 {
		capacity = 0
	}
	return &BatchBuilder{
		batch: &RecordBatch{
			Dimension: dimension,
			IDs:       make([]string, 0, capacity),
			Texts:     make([]string, 0, capacity),
			Vectors:   make([]float32, 0, capacity*max(dimension, 0)),
			Metadata:  make([]sql.NullString, 0, capacity),
		},
	}
}

// Append adds one row. The vector must have exactly the builder's width.
func (b *BatchBuilder) Append(id, text string, vector []float32, metadata *string) error {
	if len(vector) != b.batch.Dimension {
		return fmt.Errorf("%w: row %d has %d values, column width is %d",
			ErrDimensionMismatch, len(b.batch.IDs), len(vector), b.batch.Dimension)
	}
	b.batch.IDs = append(b.batch.IDs, id)
	b.batch.Texts = append(b.batch.Texts, text)
	b.batch.Vectors = append(b.batch.Vectors, vector...)
	if metadata != nil {
		b.batch.Metadata = append(b.batch.Metadata, sql.NullString{String: *metadata, Valid: true})
	} else {
		b.batch.Metadata = append(b.batch.Metadata, sql.NullString{})
	}
	return nil
}

// Finish returns the built batch. The builder must not be reused.
func (b *BatchBuilder) Finish() *RecordBatch {
	out := b.batch
	b.batch = nil
	return out
}
