package embedder

import (
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer wraps a Hugging Face tokenizer.json definition
type HFTokenizer struct {
	tk *tokenizer.Tokenizer
}

// LoadTokenizer loads tokenizer.json and disables padding
func LoadTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	tk.WithPadding(nil)
	return &HFTokenizer{tk: tk}, nil
}

// EncodeBatch encodes all texts in one call with special tokens added
func (h *HFTokenizer) EncodeBatch(texts []string) ([]Encoding, error) {
	inputs := make([]tokenizer.EncodeInput, len(texts))
	for i, text := range texts {
		inputs[i] = tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(text))
	}

	encoded, err := h.tk.EncodeBatch(inputs, true)
	if err != nil {
		return nil, err
	}

	out := make([]Encoding, len(encoded))
	for i, enc := range encoded {
		out[i] = Encoding{
			IDs:     toUint32(enc.Ids),
			TypeIDs: toUint32(enc.TypeIds),
		}
	}
	return out, nil
}

func toUint32(values []int) []uint32 {
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v)
	}
	return out
}
