// Package embeddertest provides deterministic embedders for tests.
package embeddertest

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// ErrInjected is returned by a HashEmbedder with Fail set
var ErrInjected = errors.New("injected embedding failure")

// HashEmbedder maps each lowercase word to a bucket of a fixed-width vector
// and L2-normalizes the counts. Equal texts always get equal vectors.
type HashEmbedder struct {
	Dim  int
	Fail bool

	mu    sync.Mutex
	calls int
}

// New returns a HashEmbedder of the given width
func New(dim int) *HashEmbedder {
	return &HashEmbedder{Dim: dim}
}

// Embed implements embedder.Embedder
func (h *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	if h.Fail {
		return nil, ErrInjected
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashEmbedder) vector(text string) []float32 {
	vec := make([]float32, h.Dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(word))
		vec[int(f.Sum32()%uint32(h.Dim))]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	if sum > 0 {
		inv := float32(1 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// Calls returns how many non-empty batches were embedded
func (h *HashEmbedder) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

// Provider implements embedder.Embedder
func (h *HashEmbedder) Provider() string { return "hash" }

// Model implements embedder.Embedder
func (h *HashEmbedder) Model() string { return "hash-test" }

// Close implements embedder.Embedder
func (h *HashEmbedder) Close() error { return nil }
