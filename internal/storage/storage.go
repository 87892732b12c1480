package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested table doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrDimensionMismatch is returned when a vector width disagrees with a table or batch
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidTable is returned for empty table names or non-positive dimensions
	ErrInvalidTable = errors.New("invalid table")
)

// Storage defines the storage engine contract used by the vector store
type Storage interface {
	// CreateTable opens the table if it exists, otherwise creates it with the
	// given dimension. An existing table is never altered.
	CreateTable(ctx context.Context, name string, dimension int) (*Table, error)
	GetTable(ctx context.Context, name string) (*Table, error)
	ListTables(ctx context.Context) ([]string, error)

	// Append writes every row of the batch or none of them
	Append(ctx context.Context, table *Table, batch *RecordBatch) error
	SearchVector(ctx context.Context, table *Table, query []float32, limit int) ([]Hit, error)
	CountRecords(ctx context.Context, table *Table) (int, error)

	Close() error
}

// Table is a named collection of records sharing one vector dimension
type Table struct {
	Name      string
	Dimension int
	CreatedAt time.Time
}

// Hit is one search output row: the stored columns plus the computed distance
type Hit struct {
	ID       string
	Text     string
	Metadata string
	Distance float32
}
