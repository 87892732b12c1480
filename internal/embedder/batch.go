package embedder

// Batch is a packed group of tokenized texts for one inference call.
//
// Token ids, type ids and position ids of all texts are concatenated.
// Text i occupies [CumulativeSeqLengths[i], CumulativeSeqLengths[i+1]).
type Batch struct {
	InputIDs             []uint32
	TokenTypeIDs         []uint32
	PositionIDs          []uint32
	CumulativeSeqLengths []uint32
	MaxLength            uint32

	// PooledIndices lists texts that want one vector per text
	PooledIndices []uint32
	// RawIndices lists texts that want one vector per token
	RawIndices []uint32
}

// Len returns the number of texts in the batch
func (b *Batch) Len() int {
	if len(b.CumulativeSeqLengths) == 0 {
		return 0
	}
	return len(b.CumulativeSeqLengths) - 1
}

// Span returns the token range of text i
func (b *Batch) Span(i int) (start, end uint32) {
	return b.CumulativeSeqLengths[i], b.CumulativeSeqLengths[i+1]
}

// Encoding is the tokenizer output for one text
type Encoding struct {
	IDs     []uint32
	TypeIDs []uint32
}

// BatchBuilder accumulates encodings into a Batch
type BatchBuilder struct {
	batch      Batch
	cumulative uint32
}

// NewBatchBuilder creates a builder sized for n texts
func NewBatchBuilder(n int) *BatchBuilder {
	cum := make([]uint32, 1, n+1)
	return &BatchBuilder{
		batch: Batch{
			CumulativeSeqLengths: cum,
			PooledIndices:        make([]uint32, 0, n),
			RawIndices:           []uint32{},
		},
	}
}

// Add appends one text's encoding and requests pooled output for it
func (b *BatchBuilder) Add(enc Encoding) {
	length := uint32(len(enc.IDs))
	index := uint32(b.batch.Len())

	b.batch.InputIDs = append(b.batch.InputIDs, enc.IDs...)
	b.batch.TokenTypeIDs = append(b.batch.TokenTypeIDs, enc.TypeIDs...)
	for p := uint32(0); p < length; p++ {
		b.batch.PositionIDs = append(b.batch.PositionIDs, p)
	}

	b.cumulative += length
	b.batch.CumulativeSeqLengths = append(b.batch.CumulativeSeqLengths, b.cumulative)
	b.batch.MaxLength = max(b.batch.MaxLength, length)
	b.batch.PooledIndices = append(b.batch.PooledIndices, index)
}

// Build returns the packed batch
func (b *BatchBuilder) Build() *Batch {
	out := b.batch
	return &out
}
