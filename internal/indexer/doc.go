// Package indexer turns documents into stored records.
//
// A document has a name, an optional description, a list of text chunks
// and optional shared metadata. Each chunk becomes one record whose
// metadata is a copy of the document metadata with "name" (always) and
// "description" (when present) injected.
//
// # Basic Usage
//
//	idx := indexer.New(db, emb, logger)
//	stats, err := idx.AddDocuments(ctx, types.AddDocumentsRequest{
//	    TableName: "notes",
//	    Documents: []types.Document{{
//	        Name:   "readme",
//	        Chunks: []string{"first paragraph", "second paragraph"},
//	    }},
//	})
//	fmt.Println(stats.Message())
//	// Successfully added 1 documents (2 chunks) to table 'notes'
//
// All chunks of one call are embedded together and appended in a single
// write, so a call either stores every chunk or none.
package indexer
