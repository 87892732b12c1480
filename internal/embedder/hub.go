package embedder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultHubURL is the Hugging Face model hub
const DefaultHubURL = "https://huggingface.co"

// Hub downloads model files into a local cache directory
type Hub struct {
	baseURL    string
	token      Secret
	cacheDir   string
	httpClient *http.Client
	retry      RetryConfig
	logger     *zap.Logger
}

// NewHub creates a hub client. An empty baseURL uses DefaultHubURL.
func NewHub(baseURL, cacheDir string, token Secret, logger *zap.Logger) *Hub {
	if baseURL == "" {
		baseURL = DefaultHubURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
}

// ModelDir returns the cache directory of a model id
func (h *Hub) ModelDir(model string) string {
	return filepath.Join(h.cacheDir, strings.ReplaceAll(model, "/", "--"))
}

// Fetch makes sure every file of the model is cached and returns the model directory
func (h *Hub) Fetch(ctx context.Context, model string, files ...string) (string, error) {
	if model == "" {
		return "", fmt.Errorf("%w: empty model id", ErrUnsupportedModel)
	}

	dir := h.ModelDir(model)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}

	for _, file := range files {
		dest := filepath.Join(dir, file)
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			h.logger.Debug("model file cached", zap.String("model", model), zap.String("file", file))
			continue
		}

		url := fmt.Sprintf("%s/%s/resolve/main/%s", h.baseURL, model, file)
		start := time.Now()
		size, err := retry(ctx, h.retry, func(attempt int, wait time.Duration, err error) {
			h.logger.Warn("retrying model download",
				zap.String("file", file),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}, func() (int64, error) {
			return h.download(ctx, url, dest)
		})
		if err != nil {
			return "", fmt.Errorf("download %s for %s: %w", file, model, err)
		}

		h.logger.Info("downloaded model file",
			zap.String("model", model),
			zap.String("file", file),
			zap.Int64("bytes", size),
			zap.Duration("elapsed", time.Since(start)))
	}

	return dir, nil
}

// download writes url to dest through a temporary file so a partial
// download never looks cached
func (h *Hub) download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token.Reveal())
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("hub returned status %d for %s", resp.StatusCode, url)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return 0, permanent(err)
		}
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return 0, err
	}
	return size, nil
}
