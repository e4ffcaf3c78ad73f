package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spendwise/internal/logger"
)

// RequestIDKey is the context key holding the request ID.
const RequestIDKey = "requestID"

// RequestLogging logs every request once it completes. Each request gets an
// ID echoed in the X-Request-ID header; authenticated requests also log the
// user. Server errors are logged at warn level.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if userID := c.GetString(UserIDKey); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		log := logger.Named("http")
		if c.Writer.Status() >= 500 {
			log.Warnw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
