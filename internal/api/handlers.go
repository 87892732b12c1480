package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dshills/semstore-mcp/internal/storage"
	"github.com/dshills/semstore-mcp/internal/vectordb"
	"github.com/dshills/semstore-mcp/pkg/types"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.Success("ok"))
}

func (s *Server) handleListTables(c *gin.Context) {
	tables, err := s.searcher.ListTables(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Success(tables))
}

func (s *Server) handleAddDocuments(c *gin.Context) {
	var req types.AddDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.badRequest(c, err)
		return
	}

	stats, err := s.indexer.AddDocuments(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Success(stats.Message()))
}

func (s *Server) handleSearch(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.badRequest(c, err)
		return
	}

	resp, err := s.searcher.Search(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.Success(resp.Results))
}

func (s *Server) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, types.Failure(err.Error()))
}

// fail maps an operation error onto an HTTP status
func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), types.Failure(err.Error()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, vectordb.ErrTableNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrEmptyQuery),
		errors.Is(err, types.ErrInvalidLimit),
		errors.Is(err, types.ErrNoDocuments):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
