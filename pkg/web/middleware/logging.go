package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"taxipark/pkg/logger"
)

// Logging writes one log line per request.
func Logging(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("duration", time.Since(start)),
		}
		if d := CurrentDriver(c); d != nil {
			fields = append(fields, logger.Int64("driver_id", d.ID))
		}

		switch {
		case len(c.Errors) > 0:
			fields = append(fields, logger.String("error", c.Errors.String()))
			log.Error("request failed", fields...)
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warning("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
