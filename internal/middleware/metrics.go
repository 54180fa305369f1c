package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akhilesheragolla2056/Vidhya-sub000/pkg/metrics"
)

// Metrics records request latency for classroom API traffic. Scrapes of the
// metrics endpoint itself are not observed so the histogram reflects only
// session, poll, and realtime requests.
func Metrics(metricsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if metricsPath != "" && path == metricsPath {
			return
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		metrics.APILatency.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}
