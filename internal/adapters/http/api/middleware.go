// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okian/vigil/pkg/metrics"
)

// MetricsMiddleware records Prometheus metrics for every request. The
// endpoint label uses the route template, not the raw path, to keep
// cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())
		durationMs := float64(time.Since(start).Milliseconds())

		metrics.RecordHTTPRequest(endpoint, c.Request.Method, statusCode)
		metrics.RecordHTTPRequestDuration(endpoint, c.Request.Method, statusCode, durationMs)
	}
}
