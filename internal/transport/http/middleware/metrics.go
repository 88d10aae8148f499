package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency and count per route template. CORS preflights are
// not recorded; unmatched paths share the "unknown" label to bound cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
	}
}
