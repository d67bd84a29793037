package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kcalbot/kcalbot-backend/pkg/logger"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// LoggingMiddleware tags each request with an id (reusing the caller's
// X-Request-ID) and logs one line per request once it completes. Health
// probes only log when they fail.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		if c.FullPath() == "/health" && status < 400 {
			return
		}

		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		}

		event := logger.Log.WithLevel(level).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP())

		if userID := c.GetString("userId"); userID != "" {
			event = event.Str("user_id", userID).Int64("telegram_id", c.GetInt64("telegramId"))
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("request")
	}
}
