package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs every request and recovers from handler panics with a
// JSON 500 instead of a dropped connection.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Interface("panic", recovered).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
				return
			}

			event := logger.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Str("client_ip", c.ClientIP()).
				Dur("latency", time.Since(start)).
				Str("request_id", c.GetHeader("X-Request-ID")).
				Msg("request")
		}()

		c.Next()
	}
}
