package server

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/KHET-1/meowlogger/internal/engine"
	"github.com/KHET-1/meowlogger/internal/model"
	"github.com/gin-gonic/gin"
)

//go:embed all:web
var webFS embed.FS

// Server exposes the engine over HTTP: log queries, statistics, watch
// registration, clear, and a WebSocket live stream.
type Server struct {
	router *gin.Engine
	logger *engine.Engine
	port   string
}

// New creates the API server on the given port.
func New(logger *engine.Engine, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		logger: logger,
		port:   port,
	}

	s.setupRoutes()
	return s
}

// serveEmbedded reads a file from the embedded FS and writes it with the
// given content type. The file is read once at route setup.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	// Dashboard, served from the embedded web/ directory.
	webContent, _ := fs.Sub(webFS, "web")
	s.router.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))
	s.router.GET("/style.css", serveEmbedded(webContent, "style.css", "text/css; charset=utf-8"))
	s.router.GET("/app.js", serveEmbedded(webContent, "app.js", "application/javascript; charset=utf-8"))

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/logs", s.handleLogs)
	s.router.GET("/api/stats", s.handleStats)
	s.router.POST("/api/watch", s.handleWatch)
	s.router.POST("/api/clear", s.handleClear)
	s.router.GET("/ws", s.handleWebSocket)
}

// handleLogs serves GET /api/logs with the fixed filter predicate set.
func (s *Server) handleLogs(c *gin.Context) {
	filters := model.Filters{
		Level:      c.Query("level"),
		Search:     c.Query("search"),
		SourcePath: c.Query("source"),
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	logs := s.logger.GetLogs(filters, limit)
	c.JSON(http.StatusOK, gin.H{
		"logs":    logs,
		"total":   len(logs),
		"filters": filters,
	})
}

// handleStats serves GET /api/stats, adding the derived metrics the engine
// itself does not compute.
func (s *Server) handleStats(c *gin.Context) {
	snap := s.logger.Stats()

	uptime := time.Since(snap.StartTime).Seconds()
	var perSecond float64
	if uptime > 0 {
		perSecond = float64(snap.TotalCount) / uptime
	}

	c.JSON(http.StatusOK, gin.H{
		"total_count":      snap.TotalCount,
		"count_by_level":   snap.CountByLevel,
		"count_by_pattern": snap.CountByPattern,
		"start_time":       snap.StartTime,
		"uptime_seconds":   uptime,
		"logs_per_second":  perSecond,
	})
}

// handleWatch serves POST /api/watch {"path": ...}.
func (s *Server) handleWatch(c *gin.Context) {
	var req struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "missing path"})
		return
	}

	if err := s.logger.Watch(req.Path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "now watching: " + req.Path})
}

// handleClear serves POST /api/clear.
func (s *Server) handleClear(c *gin.Context) {
	s.logger.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logs cleared"})
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(c *gin.Context) {
	snap := s.logger.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(snap.StartTime).Truncate(time.Second).String(),
		"files_watched": s.logger.FileCount(),
		"dropped_logs":  s.logger.Dropped(),
	})
}

// Start runs the server. Blocks until the server is stopped.
func (s *Server) Start() error {
	return s.router.Run(":" + s.port)
}
