package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/service"
)

// unmatchedRoute labels requests that hit no route so raw paths never become label values.
const unmatchedRoute = "unmatched"

// Metrics returns middleware that captures request metrics using the provided service.
// Requests to skipPaths are not recorded.
func Metrics(metricsSvc *service.MetricsService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if metricsSvc == nil || skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
