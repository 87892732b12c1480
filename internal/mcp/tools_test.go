package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dshills/semstore-mcp/internal/embedder/embeddertest"
	"github.com/dshills/semstore-mcp/internal/indexer"
	"github.com/dshills/semstore-mcp/internal/searcher"
	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/internal/vectordb"
	"github.com/dshills/semstore-mcp/pkg/types"
)

func setupServer(t *testing.T) (*Server, *embeddertest.HashEmbedder) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := zaptest.NewLogger(t)
	db := vectordb.New(store, logger)
	emb := embeddertest.New(64)
	return NewServer(indexer.New(db, emb, logger), searcher.NewSearcher(db, emb, logger), logger), emb
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func decodeEnvelope[T any](t *testing.T, result *mcp.CallToolResult) types.Response[T] {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	var resp types.Response[T]
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &resp))
	assert.Equal(t, types.CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	require.NotNil(t, resp.Data)
	return resp
}

func addDocs(t *testing.T, s *Server, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := s.handleAddDocuments(context.Background(), callTool(args))
	require.NoError(t, err)
	return result
}

func TestAddDocumentsAndSearch(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	result := addDocs(t, s, map[string]interface{}{
		"documents": []interface{}{
			map[string]interface{}{
				"name":        "N",
				"description": "D",
				"chunks":      []interface{}{"red apple", "green pear"},
				"metadata":    map[string]interface{}{"source": "wiki"},
			},
			map[string]interface{}{
				"name":   "M",
				"chunks": []interface{}{"yellow banana"},
			},
		},
	})
	added := decodeEnvelope[string](t, result)
	assert.Equal(t, "Successfully added 2 documents (3 chunks) to table 'knowledge_base'", *added.Data)

	// Pretty-printed
	assert.Contains(t, resultText(t, result), "\n  \"code\": 0")

	result, err := s.handleSearch(ctx, callTool(map[string]interface{}{
		"query": "green pear",
		"limit": float64(2),
	}))
	require.NoError(t, err)
	found := decodeEnvelope[[]types.SearchResult](t, result)
	require.Len(t, *found.Data, 2)

	top := (*found.Data)[0]
	assert.Equal(t, "green pear", top.Content)
	assert.Equal(t, "N", top.Name)
	require.NotNil(t, top.Description)
	assert.Equal(t, "D", *top.Description)
	assert.Equal(t, types.Metadata{"source": "wiki"}, top.Metadata)
	assert.InDelta(t, 1.0, top.Score, 1e-5)
}

func TestAddDocuments_RawArgumentsKeepLargeIntegers(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	var req mcp.CallToolRequest
	req.Params.Arguments = json.RawMessage(`{
		"documents": [{"name": "N", "chunks": ["red apple"], "metadata": {"doc_id": 9007199254740993}}]
	}`)
	result, err := s.handleAddDocuments(ctx, req)
	require.NoError(t, err)
	decodeEnvelope[string](t, result)

	result, err = s.handleSearch(ctx, callTool(map[string]interface{}{"query": "red apple"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "9007199254740993")

	found := decodeEnvelope[[]types.SearchResult](t, result)
	require.Len(t, *found.Data, 1)
	assert.Equal(t, types.Metadata{"doc_id": json.Number("9007199254740993")}, (*found.Data)[0].Metadata)
}

func TestAddDocuments_NamedTableAndListTables(t *testing.T) {
	s, _ := setupServer(t)

	result := addDocs(t, s, map[string]interface{}{
		"table_name": "notes",
		"documents": []interface{}{
			map[string]interface{}{"name": "a", "chunks": []interface{}{"x"}},
		},
	})
	added := decodeEnvelope[string](t, result)
	assert.Contains(t, *added.Data, "table 'notes'")

	result, err := s.handleListTables(context.Background(), callTool(nil))
	require.NoError(t, err)
	tables := decodeEnvelope[[]string](t, result)
	assert.Equal(t, []string{"notes"}, *tables.Data)
}

func TestListTables_Empty(t *testing.T) {
	s, _ := setupServer(t)

	result, err := s.handleListTables(context.Background(), callTool(map[string]interface{}{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"message":"success","data":[]}`, resultText(t, result))
}

func TestAddDocuments_InvalidParams(t *testing.T) {
	s, emb := setupServer(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		args interface{}
	}{
		{"arguments not an object", "nope"},
		{"missing documents", map[string]interface{}{}},
		{"null documents", map[string]interface{}{"documents": nil}},
		{"documents not an array", map[string]interface{}{"documents": "x"}},
		{"empty documents", map[string]interface{}{"documents": []interface{}{}}},
		{"chunks wrong type", map[string]interface{}{
			"documents": []interface{}{map[string]interface{}{"name": "a", "chunks": "x"}},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var req mcp.CallToolRequest
			req.Params.Arguments = tc.args
			result, err := s.handleAddDocuments(ctx, req)
			assert.Nil(t, result)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
	assert.Zero(t, emb.Calls())
}

func TestAddDocuments_OperationFailureIsToolError(t *testing.T) {
	s, emb := setupServer(t)
	emb.Fail = true

	result := addDocs(t, s, map[string]interface{}{
		"documents": []interface{}{
			map[string]interface{}{"name": "a", "chunks": []interface{}{"x"}},
		},
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), embeddertest.ErrInjected.Error())
}

func TestSearch_InvalidParams(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing query", map[string]interface{}{}},
		{"empty query", map[string]interface{}{"query": ""}},
		{"zero limit", map[string]interface{}{"query": "q", "limit": float64(0)}},
		{"negative limit", map[string]interface{}{"query": "q", "limit": float64(-3)}},
		{"fractional limit", map[string]interface{}{"query": "q", "limit": 1.5}},
		{"string limit", map[string]interface{}{"query": "q", "limit": "5"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := s.handleSearch(ctx, callTool(tc.args))
			assert.Nil(t, result)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
		})
	}
}

func TestSearch_UnknownTableIsToolError(t *testing.T) {
	s, _ := setupServer(t)

	result, err := s.handleSearch(context.Background(), callTool(map[string]interface{}{
		"table_name": "missing",
		"query":      "q",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "table not found")
}

func TestToInt(t *testing.T) {
	n, ok := toInt(float64(3))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = toInt(2.5)
	assert.False(t, ok)

	n, ok = toInt(json.Number("7"))
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = toInt(nil)
	assert.False(t, ok)
}

func TestNewServer_RegistersTools(t *testing.T) {
	s, _ := setupServer(t)

	msg := s.mcp.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"add_documents", "search", "list_tables"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
