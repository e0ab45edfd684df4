package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zilezarach/torscrape-api/internal/indexers"
	"github.com/zilezarach/torscrape-api/internal/indexers/general"
	"github.com/zilezarach/torscrape-api/internal/search"
	"go.uber.org/zap"
)

type Server struct {
	router       *gin.Engine
	logger       *zap.Logger
	registry     *general.Registry
	orchestrator *search.Orchestrator
	startTime    time.Time
}

func NewServer(registry *general.Registry, orchestrator *search.Orchestrator, logger *zap.Logger) *Server {
	server := &Server{
		router:       gin.New(),
		logger:       logger,
		registry:     registry,
		orchestrator: orchestrator,
		startTime:    time.Now(),
	}

	// Middleware
	server.router.Use(gin.Recovery())
	server.router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	})

	server.SetupRoutes()
	return server
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) SetupRoutes() {
	s.router.GET("/health", s.handleHealth)

	for _, name := range s.registry.Names() {
		adapter, _ := s.registry.Get(name)
		handler := s.handleSearch(adapter)

		group := s.router.Group("/" + name)
		group.GET("/", handler)
		group.GET("/:query", handler)
		group.GET("/:query/:pgno", handler)
	}
}

// handleSearch serves one site. A path query wins; without one the q and
// page query parameters are read instead. Every outcome is a 200 whose body
// is either the result array or a {"Message": ...} envelope.
func (s *Server) handleSearch(adapter indexers.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := search.Request{
			Category:  c.Query("category"),
			UserAgent: c.GetHeader("User-Agent"),
		}

		if query := c.Param("query"); query != "" {
			req.Query = query
			if pgno := c.Param("pgno"); pgno != "" {
				req.Page = pgno
			}
		} else {
			req.Query = c.Query("q")
			if page, ok := c.GetQuery("page"); ok {
				req.Page = page
			}
		}

		outcome := s.orchestrator.RunSearch(c.Request.Context(), adapter, req)
		c.JSON(http.StatusOK, outcome.Payload())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"sites":  s.registry.Names(),
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}
