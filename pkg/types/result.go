package types

// SearchResult is one reconstructed nearest-neighbor hit
type SearchResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Score       float32  `json:"score"`
	Metadata    Metadata `json:"metadata"`
	Description *string  `json:"description,omitempty"`
}
