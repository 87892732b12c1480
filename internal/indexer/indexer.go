package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/semstore-mcp/internal/embedder"
	"github.com/dshills/semstore-mcp/internal/vectordb"
	"github.com/dshills/semstore-mcp/pkg/types"
)

// Indexer coordinates the ingestion pipeline: flatten -> embed -> append
type Indexer struct {
	db       *vectordb.VectorDB
	embedder embedder.Embedder
	logger   *zap.Logger
}

// Statistics contains statistics about one ingestion call
type Statistics struct {
	Table          string
	DocumentsAdded int
	ChunksAdded    int
	Duration       time.Duration
}

// Message is the human-readable summary returned to callers
func (s *Statistics) Message() string {
	return fmt.Sprintf("Successfully added %d documents (%d chunks) to table '%s'",
		s.DocumentsAdded, s.ChunksAdded, s.Table)
}

// New creates a new Indexer instance
func New(db *vectordb.VectorDB, emb embedder.Embedder, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{
		db:       db,
		embedder: emb,
		logger:   logger,
	}
}

// Flatten expands documents into one text per chunk. Each chunk gets its own
// copy of the document metadata with name and description injected.
func Flatten(docs []types.Document) (texts []string, metadatas []types.Metadata) {
	for _, doc := range docs {
		for _, chunk := range doc.Chunks {
			meta := doc.Metadata.Clone()
			meta.Inject(doc.Name, doc.Description)
			texts = append(texts, chunk)
			metadatas = append(metadatas, meta)
		}
	}
	return texts, metadatas
}

// AddDocuments ingests every chunk of every document in a single batch.
// Either all chunks are stored or none are.
func (idx *Indexer) AddDocuments(ctx context.Context, req types.AddDocumentsRequest) (*Statistics, error) {
	if idx.embedder == nil {
		return nil, fmt.Errorf("embedder not initialized")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	startTime := time.Now()
	table := req.Table()
	texts, metadatas := Flatten(req.Documents)

	if err := idx.db.AddTexts(ctx, table, texts, metadatas, idx.embedder); err != nil {
		idx.logger.Error("failed to add documents",
			zap.String("table", table),
			zap.Int("documents", len(req.Documents)),
			zap.Int("chunks", len(texts)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to add documents to table '%s': %w", table, err)
	}

	stats := &Statistics{
		Table:          table,
		DocumentsAdded: len(req.Documents),
		ChunksAdded:    len(texts),
		Duration:       time.Since(startTime),
	}

	idx.logger.Info("documents added",
		zap.String("table", table),
		zap.Int("documents", stats.DocumentsAdded),
		zap.Int("chunks", stats.ChunksAdded),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}
