// Package server is the HTTP presentation boundary. It renders nothing
// itself: every response carries the messages the engine produced plus the
// awaiting-human flag, and the caller decides how to present them.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feedback-insight-poc/server/internal/agent/graph"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

// Server wires the orchestrator behind the thread API.
type Server struct {
	orch      *graph.Orchestrator
	outputDir string
}

func New(orch *graph.Orchestrator, outputDir string) *Server {
	return &Server{orch: orch, outputDir: outputDir}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	api.POST("/threads", s.createThread)
	api.POST("/threads/:id/messages", s.postMessage)
	api.POST("/threads/:id/resume", s.resume)
	api.GET("/threads/:id", s.inspect)
	api.DELETE("/threads/:id", s.reset)

	if s.outputDir != "" {
		r.Static("/outputs", s.outputDir)
	}
	return r
}

// requestLogger logs one line per request through the shared zerolog setup.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
