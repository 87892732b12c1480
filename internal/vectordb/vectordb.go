// Package vectordb manages vector tables: lazy creation, batch ingestion of
// embedded texts and similarity search with result reconstruction.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/semstore-mcp/internal/embedder"
	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// emptyMetadata is stored for texts without a metadata entry
const emptyMetadata = "{}"

// ErrTableNotFound is returned when searching a table that was never created
var ErrTableNotFound = errors.New("table not found")

// VectorDB owns the storage connection and every table handle
type VectorDB struct {
	store  storage.Storage
	logger *zap.Logger
}

// New creates a VectorDB on top of store
func New(store storage.Storage, logger *zap.Logger) *VectorDB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VectorDB{store: store, logger: logger}
}

// CreateOrOpenTable opens name if it exists, otherwise creates it with the
// given dimension. The dimension of an existing table is never changed.
func (v *VectorDB) CreateOrOpenTable(ctx context.Context, name string, dimension int) (*storage.Table, error) {
	table, err := v.store.CreateTable(ctx, name, dimension)
	if err != nil {
		return nil, err
	}
	if table.Dimension != dimension {
		v.logger.Warn("table exists with another dimension",
			zap.String("table", name),
			zap.Int("table_dimension", table.Dimension),
			zap.Int("requested_dimension", dimension))
	}
	return table, nil
}

// openForAppend returns the existing table, or creates one at the width of
// the first vector. The batch builder checks every vector against the result.
func (v *VectorDB) openForAppend(ctx context.Context, name string, dimension int) (*storage.Table, error) {
	table, err := v.store.GetTable(ctx, name)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if dimension == 0 {
		return nil, fmt.Errorf("%w: first embedding for table %q is empty", storage.ErrDimensionMismatch, name)
	}
	return v.CreateOrOpenTable(ctx, name, dimension)
}

// ListTables returns every table name in the store
func (v *VectorDB) ListTables(ctx context.Context) ([]string, error) {
	return v.store.ListTables(ctx)
}

// AddTexts embeds texts and appends one record per text in a single write.
// metadatas[i] belongs to texts[i]; texts without an entry get "{}".
func (v *VectorDB) AddTexts(ctx context.Context, tableName string, texts []string, metadatas []types.Metadata, emb embedder.Embedder) error {
	if len(texts) == 0 {
		return nil
	}

	start := time.Now()
	vectors, err := emb.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed texts: %w", err)
	}
	if len(vectors) == 0 {
		return nil
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts", embedder.ErrInvalidResponse, len(vectors), len(texts))
	}

	table, err := v.openForAppend(ctx, tableName, len(vectors[0]))
	if err != nil {
		return err
	}

	builder := storage.NewBatchBuilder(table.Dimension, len(texts))
	for i, text := range texts {
		metadata := emptyMetadata
		if i < len(metadatas) {
			metadata, err = metadatas[i].Encode()
			if err != nil {
				return err
			}
		}
		if err := builder.Append(uuid.NewString(), text, vectors[i], &metadata); err != nil {
			return fmt.Errorf("table %q: %w", table.Name, err)
		}
	}

	if err := v.store.Append(ctx, table, builder.Finish()); err != nil {
		return err
	}

	v.logger.Debug("appended records",
		zap.String("table", table.Name),
		zap.Int("records", len(texts)),
		zap.Int("dimension", table.Dimension),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Search embeds query and returns up to limit results, closest first.
// The table must already exist.
func (v *VectorDB) Search(ctx context.Context, tableName, query string, limit int, emb embedder.Embedder) ([]types.SearchResult, error) {
	table, err := v.store.GetTable(ctx, tableName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		return []types.SearchResult{}, nil
	}

	vectors, err := emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one query", embedder.ErrInvalidResponse, len(vectors))
	}

	hits, err := v.store.SearchVector(ctx, table, vectors[0], limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Reconstruct(hit))
	}
	return results, nil
}
