package embedder

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Guarded bounds the number of concurrent Embed calls process-wide.
// With a weight of 1 every call is serialized.
type Guarded struct {
	next Embedder
	sem  *semaphore.Weighted
}

// NewGuarded wraps next so that at most n Embed calls run at once.
// n below 1 is treated as 1.
func NewGuarded(next Embedder, n int) *Guarded {
	if n < 1 {
		n = 1
	}
	return &Guarded{next: next, sem: semaphore.NewWeighted(int64(n))}
}

// Embed waits for a slot, then delegates
func (g *Guarded) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)
	return g.next.Embed(ctx, texts)
}

// Provider returns the wrapped provider name
func (g *Guarded) Provider() string {
	return g.next.Provider()
}

// Model returns the wrapped model name
func (g *Guarded) Model() string {
	return g.next.Model()
}

// Close closes the wrapped embedder
func (g *Guarded) Close() error {
	return g.next.Close()
}
