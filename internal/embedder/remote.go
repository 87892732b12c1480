package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Secret holds a credential that must never appear in logs
type Secret string

// String redacts the value
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// MarshalText redacts the value in structured output
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reveal returns the raw credential
func (s Secret) Reveal() string {
	return string(s)
}

// bearerTransport attaches the Authorization header to every request
type bearerTransport struct {
	token Secret
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token.Reveal())
	return t.base.RoundTrip(clone)
}

// RemoteEmbedder implements Embedder using an OpenAI-compatible embeddings API
type RemoteEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRemoteEmbedder creates a client for {baseURL}/v1/embeddings.
// The API key is optional; when set it is sent as a bearer token.
func NewRemoteEmbedder(baseURL, model string, apiKey Secret, logger *zap.Logger) *RemoteEmbedder {
	if model == "" {
		model = DefaultRemoteModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var transport http.RoundTripper = http.DefaultTransport
	if apiKey != "" {
		transport = &bearerTransport{token: apiKey, base: transport}
	}

	return &RemoteEmbedder{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// No client timeout: the caller's context bounds each request
		httpClient: &http.Client{Transport: transport},
		logger: logger,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     *int      `json:"index"`
	} `json:"data"`
}

// Embed sends all texts in one request. Any failure fails the whole batch.
func (r *RemoteEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	body, err := json.Marshal(embeddingsRequest{Model: r.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: api call: %v", ErrProviderFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: api error %d: %s", ErrProviderFailed, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var apiResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInvalidResponse, err)
	}

	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrInvalidResponse, len(apiResp.Data), len(texts))
	}

	vectors := orderByIndex(apiResp)

	r.logger.Debug("remote embedding complete",
		zap.Int("texts", len(texts)),
		zap.String("model", r.model),
		zap.Duration("elapsed", time.Since(start)))

	return vectors, nil
}

// orderByIndex places each item at its reported index when the indices form
// a permutation of 0..n-1. Otherwise response order is used as is.
func orderByIndex(resp embeddingsResponse) [][]float32 {
	n := len(resp.Data)
	vectors := make([][]float32, n)
	seen := make([]bool, n)
	for _, item := range resp.Data {
		if item.Index == nil || *item.Index < 0 || *item.Index >= n || seen[*item.Index] {
			for i, d := range resp.Data {
				vectors[i] = d.Embedding
			}
			return vectors
		}
		seen[*item.Index] = true
		vectors[*item.Index] = item.Embedding
	}
	return vectors
}

// Provider returns the provider name
func (r *RemoteEmbedder) Provider() string {
	return ProviderRemote
}

// Model returns the model name
func (r *RemoteEmbedder) Model() string {
	return r.model
}

// Close releases idle connections
func (r *RemoteEmbedder) Close() error {
	r.httpClient.CloseIdleConnections()
	return nil
}
