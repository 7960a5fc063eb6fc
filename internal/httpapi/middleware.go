package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"comment-lens/shared/monitoring"
)

// metricsMiddleware records request counts and latency per route. The route
// template is used rather than the raw path so run IDs don't explode the
// label space.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		monitoring.HttpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		monitoring.HttpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
