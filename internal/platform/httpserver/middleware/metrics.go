package middleware

import (
	"strconv"
	"time"

	"github.com/finnova-banking-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency by route template. Unmatched
// paths are folded into a single label value.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
