package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Common errors
var (
	ErrProviderFailed   = errors.New("embedding provider failed")
	ErrInvalidResponse  = errors.New("invalid embedding response")
	ErrTokenization     = errors.New("tokenization failed")
	ErrUnexpectedOutput = errors.New("unexpected backend output")
	ErrUnsupportedDType = errors.New("unsupported dtype")
	ErrUnsupportedModel = errors.New("unsupported model")
)

// Provider names
const (
	ProviderRemote = "remote"
	ProviderLocal  = "local"

	// Default models
	DefaultRemoteModel = "text-embedding-3-small"
	DefaultLocalModel  = "minishlab/potion-base-8M"

	// Retry configuration, used for model downloads only
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
)

// Embedder converts a batch of texts into vectors.
//
// Embed is order-preserving: result[i] corresponds to texts[i]. An empty
// input returns an empty result without touching the backend.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
