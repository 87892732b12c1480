package embedder

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache provides in-memory LRU caching of vectors by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000 // Default: cache 10k embeddings
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Should never happen with positive size, but fallback to default
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{
		cache: cache,
	}
}

// Get retrieves a copy of a cached vector
// Returns a copy to prevent caller mutations from affecting cached values
func (c *Cache) Get(hash string) ([]float32, bool) {
	vec, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, true
}

// Set stores a vector in cache with automatic LRU eviction
func (c *Cache) Set(hash string, vec []float32) {
	stored := make([]float32, len(vec))
	copy(stored, vec)
	c.cache.Add(hash, stored)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// CachedEmbedder serves repeated texts from a Cache
type CachedEmbedder struct {
	next  Embedder
	cache *Cache
}

// NewCachedEmbedder wraps next with cache
func NewCachedEmbedder(next Embedder, cache *Cache) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache}
}

// Embed returns cached vectors and embeds all misses in one call to the
// wrapped embedder. Empty vectors are never cached.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	hashes := make([]string, len(texts))
	var missTexts []string
	var missIdx []int

	for i, text := range texts {
		hashes[i] = ComputeHash(text)
		if vec, ok := c.cache.Get(hashes[i]); ok {
			results[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	vectors, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, vec := range vectors {
		if j >= len(missIdx) {
			break
		}
		i := missIdx[j]
		results[i] = vec
		if len(vec) > 0 {
			c.cache.Set(hashes[i], vec)
		}
	}
	for _, i := range missIdx {
		if results[i] == nil {
			results[i] = []float32{}
		}
	}

	return results, nil
}

// Provider returns the wrapped provider name
func (c *CachedEmbedder) Provider() string {
	return c.next.Provider()
}

// Model returns the wrapped model name
func (c *CachedEmbedder) Model() string {
	return c.next.Model()
}

// Close clears the cache and closes the wrapped embedder
func (c *CachedEmbedder) Close() error {
	c.cache.Clear()
	return c.next.Close()
}
