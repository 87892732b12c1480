// Command test_embedding runs an end-to-end smoke check of the configured
// embedder: it stores a few chunks in an in-memory table and searches them.
// It accepts the same flags and environment variables as semstore.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dshills/semstore-mcp/internal/config"
	"github.com/dshills/semstore-mcp/internal/embedder"
	"github.com/dshills/semstore-mcp/internal/indexer"
	"github.com/dshills/semstore-mcp/internal/logging"
	"github.com/dshills/semstore-mcp/internal/searcher"
	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/internal/vectordb"
	"github.com/dshills/semstore-mcp/pkg/types"
)

const smokeTable = "smoke_test"

var smokeDocuments = []types.Document{
	{
		Name:   "go",
		Chunks: []string{"Go is a statically typed compiled programming language", "Goroutines are lightweight threads managed by the runtime"},
	},
	{
		Name:        "bread",
		Description: types.StringPtr("baking notes"),
		Chunks:      []string{"Sourdough bread rises with a wild yeast starter"},
	},
}

func main() {
	log.SetOutput(os.Stderr)
	fmt.Println("Testing embedding integration...")

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		log.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	emb, err := embedder.New(ctx, cfg.EmbedderConfig(), logger)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	defer emb.Close()
	fmt.Printf("Embedder: %s (%s)\n", emb.Provider(), emb.Model())

	db := vectordb.New(store, logger)
	idx := indexer.New(db, emb, logger)
	srch := searcher.NewSearcher(db, emb, logger)

	stats, err := idx.AddDocuments(ctx, types.AddDocumentsRequest{TableName: smokeTable, Documents: smokeDocuments})
	if err != nil {
		log.Fatalf("Failed to add documents: %v", err)
	}

	fmt.Printf("\nIndexing Statistics:\n")
	fmt.Printf("  Documents Added: %d\n", stats.DocumentsAdded)
	fmt.Printf("  Chunks Added: %d\n", stats.ChunksAdded)
	fmt.Printf("  Duration: %v\n", stats.Duration)

	table, err := store.GetTable(ctx, smokeTable)
	if err != nil {
		log.Fatalf("Failed to get table: %v", err)
	}
	count, err := store.CountRecords(ctx, table)
	if err != nil {
		log.Fatalf("Failed to count records: %v", err)
	}

	limit := 3
	resp, err := srch.Search(ctx, types.SearchRequest{
		TableName: smokeTable,
		Query:     "which language has goroutines?",
		Limit:     &limit,
	})
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}

	fmt.Printf("\nSearch Results:\n")
	for i, r := range resp.Results {
		fmt.Printf("  %d. [%.4f] %s: %s\n", i+1, r.Score, r.Name, r.Content)
	}

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Records in DB: %d\n", count)

	if count == stats.ChunksAdded && len(resp.Results) > 0 {
		fmt.Println("\n✓ SUCCESS: Embeddings were generated and stored!")
	} else {
		fmt.Println("\n✗ FAILURE: Stored records or search results are missing!")
		os.Exit(1)
	}
}
