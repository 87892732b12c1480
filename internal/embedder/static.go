package embedder

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Model files fetched for the local variant
const (
	FileWeights   = "model.safetensors"
	FileConfig    = "config.json"
	FileTokenizer = "tokenizer.json"

	// embeddingsTensor is the token embedding matrix of static models
	embeddingsTensor = "embeddings"
)

// Pooling strategies
const (
	PoolMean = "mean"
)

// ModelConfig is the subset of config.json used by the static backend
type ModelConfig struct {
	Normalize bool `json:"normalize"`
}

// StaticBackend embeds texts by mean-pooling rows of a token embedding
// matrix. It serves Model2Vec-style static embedding models.
type StaticBackend struct {
	weights   *Matrix
	normalize bool
}

// NewStaticBackend loads weights and config from modelDir. Only float32
// inference with mean pooling is supported.
func NewStaticBackend(modelDir, dtype, pool string) (*StaticBackend, error) {
	if dtype != "float32" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, dtype)
	}
	if pool != PoolMean {
		return nil, fmt.Errorf("%w: pooling %s", ErrUnsupportedModel, pool)
	}

	var cfg ModelConfig
	raw, err := os.ReadFile(filepath.Join(modelDir, FileConfig))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	weights, err := readSafetensorsMatrix(filepath.Join(modelDir, FileWeights), embeddingsTensor)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}

	return &StaticBackend{weights: weights, normalize: cfg.Normalize}, nil
}

// Dimension returns the width of produced vectors
func (s *StaticBackend) Dimension() int {
	return s.weights.Cols
}

// Embed pools each requested text span. Pooled indices yield one vector,
// raw indices yield the per-token rows.
func (s *StaticBackend) Embed(batch *Batch) (map[int]Output, error) {
	if batch.Len() == 0 {
		return map[int]Output{}, nil
	}
	if total := batch.CumulativeSeqLengths[batch.Len()]; int(total) != len(batch.InputIDs) {
		return nil, fmt.Errorf("batch holds %d tokens but offsets end at %d", len(batch.InputIDs), total)
	}

	out := make(map[int]Output, len(batch.PooledIndices)+len(batch.RawIndices))

	for _, idx := range batch.PooledIndices {
		if int(idx) >= batch.Len() {
			return nil, fmt.Errorf("pooled index %d out of range", idx)
		}
		start, end := batch.Span(int(idx))
		vec, err := s.meanPool(batch.InputIDs[start:end])
		if err != nil {
			return nil, err
		}
		out[int(idx)] = Output{Kind: OutputPooled, Pooled: vec}
	}

	for _, idx := range batch.RawIndices {
		if int(idx) >= batch.Len() {
			return nil, fmt.Errorf("raw index %d out of range", idx)
		}
		start, end := batch.Span(int(idx))
		rows := make([][]float32, 0, end-start)
		for _, id := range batch.InputIDs[start:end] {
			row, err := s.row(id)
			if err != nil {
				return nil, err
			}
			rows = append(rows, append([]float32(nil), row...))
		}
		out[int(idx)] = Output{Kind: OutputAll, All: rows}
	}

	return out, nil
}

func (s *StaticBackend) row(id uint32) ([]float32, error) {
	if int(id) >= s.weights.Rows {
		return nil, fmt.Errorf("token id %d outside vocabulary of %d", id, s.weights.Rows)
	}
	return s.weights.Row(int(id)), nil
}

func (s *StaticBackend) meanPool(ids []uint32) ([]float32, error) {
	vec := make([]float32, s.weights.Cols)
	if len(ids) == 0 {
		return vec, nil
	}

	for _, id := range ids {
		row, err := s.row(id)
		if err != nil {
			return nil, err
		}
		for j, v := range row {
			vec[j] += v
		}
	}

	inv := 1 / float32(len(ids))
	for j := range vec {
		vec[j] *= inv
	}

	if s.normalize {
		l2Normalize(vec)
	}
	return vec, nil
}

func l2Normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}

// Close is a no-op; weights are released with the backend
func (s *StaticBackend) Close() error {
	return nil
}
