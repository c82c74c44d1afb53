package httpserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mailrelay/pkg/metrics"
)

// requestMetrics records per-request duration labeled by route
// template, not raw path, to keep cardinality bounded.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
