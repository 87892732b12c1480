// Package storage provides SQLite-based persistence for vector tables.
//
// A table is a named collection of records that share one vector dimension.
// Each record holds an id, the original text, its vector and an optional JSON
// metadata string. Tables are created implicitly on first write and their
// dimension never changes afterwards.
//
// # Database Schema
//
// Tables:
//   - schema_version: applied migrations
//   - vector_tables: table name, dimension, creation time
//   - records: rows of every table, keyed by (table_name, id)
//
// Vectors are stored as little-endian float32 blobs.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("./semstore_data/semstore.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	table, err := db.CreateTable(ctx, "knowledge_base", 384)
//
//	builder := storage.NewBatchBuilder(table.Dimension, len(texts))
//	for i, text := range texts {
//	    if err := builder.Append(ids[i], text, vectors[i], nil); err != nil {
//	        return err
//	    }
//	}
//	err = db.Append(ctx, table, builder.Finish())
//
//	hits, err := db.SearchVector(ctx, table, queryVector, 5)
//
// # Vector Search
//
// Search is an exact scan: every record of the table is compared to the query
// using cosine distance (1 - cosine similarity), results are sorted ascending
// and truncated to the limit. Ties keep insertion order.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo"
package storage
