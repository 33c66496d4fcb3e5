package middleware

import (
	"fmt"
	"time"

	"github.com/alirezazamanidev/project-microservice/internal/http/response"
	"github.com/alirezazamanidev/project-microservice/internal/requestctx"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger writes one line per request
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("correlation_id", requestctx.CorrelationIDFromContext(c.Request.Context())).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// Recovery turns a handler panic into the standard internal error body
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().
			Str("correlation_id", requestctx.CorrelationIDFromContext(c.Request.Context())).
			Interface("panic", recovered).
			Msg("handler panic")
		response.Abort(c, fmt.Errorf("panic: %v", recovered))
	})
}
