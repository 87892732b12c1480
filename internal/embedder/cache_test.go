package embedder

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder returns [len(text)] and records every call
type countingEmbedder struct {
	mu       sync.Mutex
	calls    [][]string
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	c.mu.Lock()
	c.calls = append(c.calls, append([]string(nil), texts...))
	c.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text))}
	}
	return out, nil
}

func (c *countingEmbedder) Provider() string { return "counting" }
func (c *countingEmbedder) Model() string    { return "counting-model" }
func (c *countingEmbedder) Close() error     { return nil }

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := NewCache(2)
	vec := []float32{1, 2}
	cache.Set("h", vec)
	vec[0] = 99

	got, ok := cache.Get("h")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)

	got[1] = 42
	again, _ := cache.Get("h")
	assert.Equal(t, []float32{1, 2}, again)
}

func TestCache_Eviction(t *testing.T) {
	cache := NewCache(2)
	cache.Set("a", []float32{1})
	cache.Set("b", []float32{2})
	cache.Set("c", []float32{3})

	assert.Equal(t, 2, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)

	cache.Clear()
	assert.Zero(t, cache.Size())
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	emb := NewCachedEmbedder(inner, NewCache(10))
	ctx := context.Background()

	first, err := emb.Embed(ctx, []string{"a", "bb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, first)

	second, err := emb.Embed(ctx, []string{"ccc", "a", "bb", "dddd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{3}, {1}, {2}, {4}}, second)

	// Only misses reach the inner embedder, in one call and in order
	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"ccc", "dddd"}, inner.calls[1])

	_, err = emb.Embed(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Len(t, inner.calls, 2)

	assert.Equal(t, "counting", emb.Provider())
	assert.Equal(t, "counting-model", emb.Model())
}
