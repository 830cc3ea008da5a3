// Package server exposes one table over HTTP for tooling and smoke tests.
// The engine stays single-threaded: every handler funnels through a mutex.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	bplus "myjql/bplustree"
	"myjql/types"
)

type Server struct {
	mu       sync.Mutex
	table    *bplus.Table
	log      *zap.Logger
	validate *validator.Validate
	engine   *gin.Engine
}

type insertRequest struct {
	A uint32 `json:"a"`
	B string `json:"b" validate:"required,max=11"`
}

func New(table *bplus.Table, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		table:    table,
		log:      log,
		validate: validator.New(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/rows", s.handleInsert)
	r.GET("/rows", s.handleList)
	r.GET("/rows/:key", s.handleGet)
	r.DELETE("/rows/:key", s.handleDelete)
	s.engine = r
	return s
}

// Handler returns the routed handler for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleInsert(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row := types.Row{A: req.A, B: req.B}
	s.mu.Lock()
	err := s.table.Insert(&row)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) handleList(c *gin.Context) {
	s.mu.Lock()
	rows, err := s.table.SelectAll()
	s.mu.Unlock()
	if err != nil {
		s.log.Error("list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []types.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

func (s *Server) handleGet(c *gin.Context) {
	key := c.Param("key")
	if len(key) > types.ColumnBSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is too long"})
		return
	}
	s.mu.Lock()
	rows, err := s.table.SelectEqual(key)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("select failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []types.Row{}
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows, "count": len(rows)})
}

func (s *Server) handleDelete(c *gin.Context) {
	key := c.Param("key")
	if len(key) > types.ColumnBSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is too long"})
		return
	}
	s.mu.Lock()
	deleted, err := s.table.Delete(types.SerializeKey(key))
	s.mu.Unlock()
	if err != nil {
		s.log.Error("delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
