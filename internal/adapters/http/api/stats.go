// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.statsProvider.GetStats(c.Request.Context()))
}
