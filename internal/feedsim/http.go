package feedsim

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// Server exposes the generator over HTTP on the two feed paths.
type Server struct {
	gen *Generator

	// requests alternates the disposition payload between its two wire
	// shapes, one per request, so consumers see both.
	requests atomic.Int64
}

// NewServer wraps gen in an HTTP server.
func NewServer(gen *Generator) *Server {
	return &Server{gen: gen}
}

// NewRouter builds the gin engine serving the simulated feeds.
func (s *Server) NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/attention", s.handleAttention)
	router.GET("/disposition", s.handleDisposition)

	return router
}

func (s *Server) handleAttention(c *gin.Context) {
	c.JSON(http.StatusOK, s.gen.Attention())
}

func (s *Server) handleDisposition(c *gin.Context) {
	rows := s.gen.Disposition()
	if s.requests.Add(1)%2 == 0 {
		c.JSON(http.StatusOK, rows)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stat": "OK", "data": rows})
}
