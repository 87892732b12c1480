package embedder

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Config holds embedder configuration
type Config struct {
	// Endpoint selects the remote variant when set
	Endpoint string
	Model    string
	APIKey   Secret

	// Local variant
	HubURL   string
	HubToken Secret
	CacheDir string

	// CacheSize enables the LRU cache when positive
	CacheSize int
	// Concurrency bounds concurrent Embed calls; the local variant always uses 1
	Concurrency int
}

// New creates the embedder selected by cfg. The result is wrapped in the
// shared guard and, when configured, the LRU cache. Construction failures
// are returned as is and should abort startup.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		base        Embedder
		concurrency = cfg.Concurrency
	)
	if cfg.Endpoint != "" {
		base = NewRemoteEmbedder(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
	} else {
		local, err := NewLocal(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		base = local
		concurrency = 1
	}

	logger.Info("embedding engine ready",
		zap.String("provider", base.Provider()),
		zap.String("model", base.Model()),
		zap.Int("concurrency", max(concurrency, 1)),
		zap.Int("cache_size", cfg.CacheSize))

	var emb Embedder = NewGuarded(base, concurrency)
	if cfg.CacheSize > 0 {
		emb = NewCachedEmbedder(emb, NewCache(cfg.CacheSize))
	}
	return emb, nil
}

// NewLocal downloads the model files and builds the local variant
func NewLocal(ctx context.Context, cfg Config, logger *zap.Logger) (*LocalEmbedder, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultLocalModel
	}

	hub := NewHub(cfg.HubURL, cfg.CacheDir, cfg.HubToken, logger)
	dir, err := hub.Fetch(ctx, model, FileWeights, FileConfig, FileTokenizer)
	if err != nil {
		return nil, fmt.Errorf("fetch model %s: %w", model, err)
	}

	tk, err := LoadTokenizer(filepath.Join(dir, FileTokenizer))
	if err != nil {
		return nil, err
	}

	backend, err := NewStaticBackend(dir, "float32", PoolMean)
	if err != nil {
		return nil, fmt.Errorf("init backend for %s: %w", model, err)
	}

	logger.Info("loaded local model",
		zap.String("model", model),
		zap.String("dir", dir),
		zap.Int("dimension", backend.Dimension()))

	return NewLocalEmbedder(model, tk, backend, logger), nil
}
