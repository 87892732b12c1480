package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/dshills/semstore-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleAddDocuments handles the add_documents tool invocation
func (s *Server) handleAddDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req types.AddDocumentsRequest
	if err := request.BindArguments(&req); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", map[string]interface{}{
			"reason": err.Error(),
		})
	}

	if req.Documents == nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "documents parameter is required", map[string]interface{}{
			"param":  "documents",
			"reason": "missing or null",
		})
	}
	if err := req.Validate(); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, err.Error(), map[string]interface{}{
			"param": "documents",
		})
	}

	stats, err := s.indexer.AddDocuments(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return envelope(stats.Message())
}

// handleSearch handles the search tool invocation
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	req := types.SearchRequest{
		TableName: getStringDefault(args, "table_name", ""),
		Query:     query,
	}

	if raw, present := args["limit"]; present && raw != nil {
		limit, ok := toInt(raw)
		if !ok || limit < 1 {
			return nil, newMCPError(ErrorCodeInvalidParams, "limit must be a positive integer", map[string]interface{}{
				"param": "limit",
				"value": raw,
			})
		}
		req.Limit = &limit
	}

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return envelope(resp.Results)
}

// handleListTables handles the list_tables tool invocation
func (s *Server) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := s.searcher.ListTables(ctx)
	if err != nil {
		s.logger.Error("list tables failed", zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return envelope(tables)
}

// Helper functions

// envelope wraps data in the success envelope as indented JSON text
func envelope[T any](data T) (*mcp.CallToolResult, error) {
	text, err := formatJSON(types.Success(data))
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(text), nil
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// toInt accepts JSON numbers that hold an integral value
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	default:
		return 0, false
	}
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
