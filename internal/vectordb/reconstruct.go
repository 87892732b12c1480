package vectordb

import (
	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/pkg/types"
)

// Reconstruct turns a raw hit into a SearchResult. Score is 1 - distance.
// Unparseable metadata becomes an empty object; name and description are
// promoted out of it.
func Reconstruct(hit storage.Hit) types.SearchResult {
	metadata := types.ParseMetadata(hit.Metadata)
	name, description := metadata.Extract()

	return types.SearchResult{
		ID:          hit.ID,
		Name:        name,
		Content:     hit.Text,
		Score:       1 - hit.Distance,
		Metadata:    metadata,
		Description: description,
	}
}
