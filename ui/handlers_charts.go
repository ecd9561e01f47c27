package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autochart/domain/chart"
	"autochart/internal/charts"
)

func (s *Server) handlePreview(c *gin.Context) {
	var req chart.BuildRequest
	if !s.bindJSON(c, &req) {
		return
	}
	spec, err := s.dashboard.Preview(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spec)
}

func (s *Server) handleListCharts(c *gin.Context) {
	specs, err := s.dashboard.DashboardCharts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": specs, "count": len(specs)})
}

func (s *Server) handleAddChart(c *gin.Context) {
	var req chart.BuildRequest
	if !s.bindJSON(c, &req) {
		return
	}
	spec, err := s.dashboard.Preview(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, err := s.dashboard.AddChart(c.Request.Context(), spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleRemoveChart(c *gin.Context) {
	if err := s.dashboard.RemoveChart(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAutoCharts(c *gin.Context) {
	specs, err := s.dashboard.AutoCharts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": specs, "count": len(specs)})
}

func (s *Server) handleSuggestions(c *gin.Context) {
	profile, err := s.dashboard.FilteredProfile(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	list := charts.Suggest(profile)
	byKey := make(map[string]chart.Suggestion, len(list))
	for _, sg := range list {
		byKey[sg.Key] = sg
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": byKey, "order": keys(list)})
}

func keys(list []chart.Suggestion) []string {
	out := make([]string, len(list))
	for i, sg := range list {
		out[i] = sg.Key
	}
	return out
}

func (s *Server) handleTrending(c *gin.Context) {
	uploads, err := s.dashboard.Uploads(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"charts": charts.Trending(uploads)})
}

func (s *Server) handleGenerateTrending(c *gin.Context) {
	specs, err := s.dashboard.GenerateTrendingCharts(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"charts": specs})
}
