package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autochart/internal"
	"autochart/internal/dashboard"
)

// multipartOverhead is the allowance for multipart framing on top of the file itself
const multipartOverhead = 1 << 20

// ServerConfig holds API server settings
type ServerConfig struct {
	MaxUploadBytes int64
	HistogramBins  int
}

// Server is the JSON API of the dashboard
type Server struct {
	router    *gin.Engine
	dashboard *dashboard.Service
	config    ServerConfig
	logger    *internal.Logger
}

// NewServer creates the API server around a dashboard service
func NewServer(svc *dashboard.Service, config ServerConfig) *Server {
	if config.HistogramBins <= 0 {
		config.HistogramBins = 8
	}
	s := &Server{
		router:    gin.Default(),
		dashboard: svc,
		config:    config,
		logger:    internal.DefaultLogger,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")

	api.POST("/datasets", s.handleUpload)
	api.GET("/datasets/current", s.handleCurrentDataset)
	api.GET("/uploads", s.handleUploads)
	api.POST("/reset", s.handleReset)
	api.GET("/dashboard", s.handleViews)

	api.GET("/profile", s.handleProfile)
	api.GET("/summary", s.handleSummary)
	api.POST("/columns/:name/type", s.handleUpdateColumnType)
	api.POST("/columns", s.requireDataset, s.handleAddCalculatedColumn)
	api.GET("/config", s.handleExportConfig)
	api.PUT("/config", s.handleImportConfig)

	api.GET("/filters", s.handleListFilters)
	api.POST("/filters", s.handleAddFilter)
	api.PUT("/filters", s.handleSetFilters)
	api.DELETE("/filters", s.handleClearFilters)
	api.POST("/filters/remove", s.handleRemoveFilter)
	api.GET("/filters/operators", s.handleOperators)

	data := api.Group("", s.requireDataset)
	data.GET("/data/filtered", s.handleFiltered)
	data.GET("/data/export", s.handleExport)
	data.POST("/aggregate", s.handleAggregate)
	data.POST("/stats/summary", s.handleStatsSummary)
	data.POST("/stats/histogram", s.handleHistogram)
	data.POST("/drilldown", s.handleDrillDown)
	data.POST("/charts/preview", s.handlePreview)

	api.GET("/charts", s.handleListCharts)
	api.POST("/charts", s.requireDataset, s.handleAddChart)
	api.DELETE("/charts/:id", s.handleRemoveChart)
	api.GET("/charts/auto", s.handleAutoCharts)
	api.GET("/charts/suggestions", s.handleSuggestions)
	api.GET("/charts/trending", s.handleTrending)
	api.POST("/charts/trending", s.handleGenerateTrending)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] listening on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
