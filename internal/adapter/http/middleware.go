package http

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/house-energy-service/internal/observability"
	"github.com/gin-gonic/gin"
)

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// requestMetrics counts requests by matched route, so path parameters do not
// blow up label cardinality.
func requestMetrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.APIRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
