package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dshills/semstore-mcp/internal/indexer"
	"github.com/dshills/semstore-mcp/internal/searcher"
)

const shutdownTimeout = 10 * time.Second

// Server serves the REST interface
type Server struct {
	engine   *gin.Engine
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	logger   *zap.Logger
}

// NewServer builds the router
func NewServer(idx *indexer.Indexer, srch *searcher.Searcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestLogger(logger), gin.Recovery())

	s := &Server{
		engine:   engine,
		indexer:  idx,
		searcher: srch,
		logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/tables", s.handleListTables)
		v1.POST("/documents", s.handleAddDocuments)
		v1.POST("/search", s.handleSearch)
	}
}

// Handler returns the router as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving REST", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("rest transport: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("rest shutdown: %w", err)
	}
	return nil
}
