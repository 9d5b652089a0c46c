package telemetry

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPLogger logs every request with method, path, status and latency.
func HTTPLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.InfoContext(c.Request.Context(), "http: request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
