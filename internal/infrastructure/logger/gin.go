package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestIDFrom(c *gin.Context) string {
	requestID, _ := c.Get("request_id")
	s, _ := requestID.(string)
	return s
}

// GinMiddleware logs every request after it completes, and seeds a
// request-scoped logger into the gin context for handlers to pick up via
// GetGinLogger.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		reqLogger := logger.With(
			zap.String("request_id", requestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Set("logger", reqLogger)

		c.Next()

		logCompletedRequest(reqLogger, c, time.Since(start), query)
	}
}

func logCompletedRequest(reqLogger *zap.Logger, c *gin.Context, latency time.Duration, query string) {
	status := c.Writer.Status()
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("client_ip", c.ClientIP()),
		zap.String("user_agent", c.Request.UserAgent()),
		zap.Int("body_size", c.Writer.Size()),
	}
	if query != "" {
		fields = append(fields, zap.String("query", query))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}

	emit := reqLogger.Info
	switch {
	case status >= http.StatusInternalServerError:
		emit = reqLogger.Error
	case status >= http.StatusBadRequest:
		emit = reqLogger.Warn
	}
	emit("HTTP Request", fields...)
}

// Recovery turns a handler panic into a logged 500 instead of a dropped
// connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", requestIDFrom(c)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", err),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger, or a nop logger when the
// middleware did not run (as in bare handler tests).
func GetGinLogger(c *gin.Context) *zap.Logger {
	v, _ := c.Get("logger")
	if l, ok := v.(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
