package searcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/semstore-mcp/internal/embedder"
	"github.com/dshills/semstore-mcp/internal/vectordb"
	"github.com/dshills/semstore-mcp/pkg/types"
)

// SearchResponse contains search results and metadata
type SearchResponse struct {
	Results      []types.SearchResult
	TotalResults int
	Table        string
	Duration     time.Duration
}

// Searcher runs similarity queries against vector tables
type Searcher struct {
	db       *vectordb.VectorDB
	embedder embedder.Embedder
	logger   *zap.Logger
}

// NewSearcher creates a new Searcher instance
func NewSearcher(db *vectordb.VectorDB, emb embedder.Embedder, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{
		db:       db,
		embedder: emb,
		logger:   logger,
	}
}

// Search applies request defaults, validates, and returns the closest
// records first
func (s *Searcher) Search(ctx context.Context, req types.SearchRequest) (*SearchResponse, error) {
	startTime := time.Now()

	// Validate searcher state
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not initialized")
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	table := req.Table()
	limit := req.EffectiveLimit()

	results, err := s.db.Search(ctx, table, req.Query, limit, s.embedder)
	if err != nil {
		return nil, fmt.Errorf("search in table '%s' failed: %w", table, err)
	}

	response := &SearchResponse{
		Results:      results,
		TotalResults: len(results),
		Table:        table,
		Duration:     time.Since(startTime),
	}

	s.logger.Debug("search complete",
		zap.String("table", table),
		zap.Int("limit", limit),
		zap.Int("results", response.TotalResults),
		zap.Duration("duration", response.Duration))

	return response, nil
}

// ListTables returns every table name
func (s *Searcher) ListTables(ctx context.Context) ([]string, error) {
	tables, err := s.db.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}
