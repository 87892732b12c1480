package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/semstore-mcp/internal/indexer"
	"github.com/dshills/semstore-mcp/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "semstore-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	// shutdownTimeout bounds graceful shutdown of the HTTP transport
	shutdownTimeout = 10 * time.Second
)

const instructions = `This server is a semantic store for text documents.
Use add_documents to store documents split into chunks, search to find the chunks closest in meaning to a query, and list_tables to see the available tables.
Tables are created on first write. When table_name is omitted, "knowledge_base" is used.`

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	logger   *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(idx *indexer.Indexer, srch *searcher.Searcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:      mcpServer,
		indexer:  idx,
		searcher: srch,
		logger:   logger,
	}

	s.registerTools()
	return s
}

// ServeStdio serves MCP over stdin/stdout until ctx is canceled or stdin closes
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	s.logger.Info("serving MCP", zap.String("transport", "stdio"))
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is canceled
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP", zap.String("transport", "streamable-http"), zap.String("addr", addr))
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("streamable-http transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown streamable-http transport: %w", err)
	}
	return nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(addDocumentsTool(), s.handleAddDocuments)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(listTablesTool(), s.handleListTables)
}
