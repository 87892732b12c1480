package embedder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OutputKind distinguishes pooled from per-token backend output
type OutputKind int

const (
	// OutputPooled is one vector per text
	OutputPooled OutputKind = iota
	// OutputAll is one vector per token
	OutputAll
)

// Output is the backend result for one text
type Output struct {
	Kind   OutputKind
	Pooled []float32
	All    [][]float32
}

// Tokenizer encodes texts without padding
type Tokenizer interface {
	EncodeBatch(texts []string) ([]Encoding, error)
}

// Backend runs inference on a packed batch. It returns a map from text
// index to output. Implementations need not be safe for concurrent use.
type Backend interface {
	Embed(batch *Batch) (map[int]Output, error)
	Close() error
}

// LocalEmbedder implements Embedder with an in-process tokenizer and backend
type LocalEmbedder struct {
	mu        sync.Mutex
	tokenizer Tokenizer
	backend   Backend
	model     string
	logger    *zap.Logger
}

// NewLocalEmbedder wraps a tokenizer and backend
func NewLocalEmbedder(model string, tokenizer Tokenizer, backend Backend, logger *zap.Logger) *LocalEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalEmbedder{
		tokenizer: tokenizer,
		backend:   backend,
		model:     model,
		logger:    logger,
	}
}

// Embed tokenizes all texts, packs them into one batch and requests pooled
// output for every index. A text the backend leaves out gets an empty vector.
func (l *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()

	encodings, err := l.tokenizer.EncodeBatch(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenization, err)
	}
	if len(encodings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d encodings for %d texts", ErrTokenization, len(encodings), len(texts))
	}

	builder := NewBatchBuilder(len(encodings))
	for _, enc := range encodings {
		builder.Add(enc)
	}
	batch := builder.Build()

	outputs, err := l.backend.Embed(batch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	results := make([][]float32, len(texts))
	for i := range results {
		results[i] = []float32{}
	}
	for idx, out := range outputs {
		if idx < 0 || idx >= len(results) {
			continue
		}
		if out.Kind != OutputPooled {
			return nil, fmt.Errorf("%w: text %d returned per-token output", ErrUnexpectedOutput, idx)
		}
		results[idx] = out.Pooled
	}

	l.logger.Debug("local embedding complete",
		zap.Int("texts", len(texts)),
		zap.Uint32("max_length", batch.MaxLength),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

// Provider returns the provider name
func (l *LocalEmbedder) Provider() string {
	return ProviderLocal
}

// Model returns the model name
func (l *LocalEmbedder) Model() string {
	return l.model
}

// Close releases the backend
func (l *LocalEmbedder) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backend.Close()
}
