// Package searcher answers nearest-neighbor queries over vector tables.
//
// A query is embedded with the same engine used at ingestion time and
// compared to every record of the table by cosine distance. Results are
// ordered closest first and carry score = 1 - distance.
//
// # Basic Usage
//
//	s := searcher.NewSearcher(db, emb, logger)
//	resp, err := s.Search(ctx, types.SearchRequest{
//	    TableName: "notes",
//	    Query:     "how do I rotate keys?",
//	})
//	for _, r := range resp.Results {
//	    fmt.Printf("%s (%.3f): %s\n", r.Name, r.Score, r.Content)
//	}
//
// TableName defaults to "knowledge_base" and Limit to 5. A limit below 1
// or an empty query is rejected before any embedding work. Searching a
// table that was never written to fails with vectordb.ErrTableNotFound.
package searcher
