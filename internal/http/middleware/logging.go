package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
		}
		if status >= 500 {
			logger.Warn("request", args...)
			return
		}
		logger.Debug("request", args...)
	}
}
