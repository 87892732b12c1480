// Package embedder converts text into fixed-dimension vectors.
//
// Two variants implement the Embedder interface and are selected once at
// construction:
//
//   - RemoteEmbedder posts to an OpenAI-compatible {endpoint}/v1/embeddings API
//   - LocalEmbedder tokenizes in process and runs a Backend on a packed Batch
//
// The shipped Backend is StaticBackend, which mean-pools rows of a token
// embedding matrix loaded from model.safetensors. Model files are fetched
// from the Hugging Face hub by Hub and cached on disk.
//
// # Basic Usage
//
//	emb, err := embedder.New(ctx, embedder.Config{
//	    Endpoint:  os.Getenv("EMBEDDING_ENDPOINT"), // empty selects the local variant
//	    CacheDir:  "/var/cache/semstore/models",
//	    CacheSize: 10000,
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	vectors, err := emb.Embed(ctx, []string{"first text", "second text"})
//
// # Concurrency
//
// New wraps the engine in Guarded, a semaphore that bounds concurrent Embed
// calls. The local variant is always limited to one call at a time because
// its backend is not reentrant. The remote variant may be widened.
//
// # Caching
//
// CachedEmbedder keys vectors by the SHA-256 of the text. Misses of one
// call are embedded together in a single backend call.
//
// # Error Handling
//
// A failure fails the whole batch; there are no partial results. Embed
// never retries. Model downloads retry server errors with exponential
// backoff; client errors such as 404 fail at once:
//
//	config := embedder.DefaultRetryConfig()
//	// Attempts: 3
//	// BaseDelay: 100ms
//	// MaxDelay: 5s
//	// Multiplier: 2.0
package embedder
