package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/semstore-mcp/pkg/types"
)

// addDocumentsTool returns the tool definition for add_documents
func addDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "add_documents",
		Description: "Add documents to a vector table. Supports batching multiple documents, where each document can have multiple chunks sharing the same metadata.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "The name of the table to add documents to (default: " + types.DefaultTableName + ")",
				},
				"documents": map[string]interface{}{
					"type":        "array",
					"description": "List of documents to add",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name": map[string]interface{}{
								"type":        "string",
								"description": "Name of the document",
							},
							"description": map[string]interface{}{
								"type":        "string",
								"description": "Optional description of the document",
							},
							"chunks": map[string]interface{}{
								"type":        "array",
								"description": "Text chunks of the document; each chunk is embedded and stored separately",
								"items": map[string]interface{}{
									"type": "string",
								},
							},
							"metadata": map[string]interface{}{
								"type":        "object",
								"description": "Optional metadata shared by all chunks of the document",
							},
						},
						"required": []string{"name", "chunks"},
					},
				},
			},
			Required: []string{"documents"},
		},
	}
}

// searchTool returns the tool definition for search
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search",
		Description: "Search for similar documents in a vector table using semantic vector search.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table_name": map[string]interface{}{
					"type":        "string",
					"description": "The name of the table to search (default: " + types.DefaultTableName + ")",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The query text to search for",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return",
					"default":     types.DefaultSearchLimit,
					"minimum":     1,
				},
			},
			Required: []string{"query"},
		},
	}
}

// listTablesTool returns the tool definition for list_tables
func listTablesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_tables",
		Description: "List all tables in the vector store.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
