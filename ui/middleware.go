package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autochart/internal/errors"
)

// requireDataset rejects data endpoints while no dataset is loaded
func (s *Server) requireDataset(c *gin.Context) {
	if s.dashboard.Snapshot().Dataset.IsEmpty() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "No data loaded",
			"code":  errors.CodeNoData,
		})
		return
	}
	c.Next()
}

// respondError writes err with the status its code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	err = errors.FromDomain(err)
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	} else {
		s.logger.Warn("[API] %s %s rejected: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

// bindJSON decodes the request body, answering 400 on malformed input
func (s *Server) bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.respondError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return false
	}
	return true
}
