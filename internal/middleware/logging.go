package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerKey is the context key for the request-scoped logger.
const LoggerKey = "logger"

// LoggingConfig holds configuration for the logging middleware.
type LoggingConfig struct {
	Logger          *zap.Logger
	SkipPaths       []string
	SkipHealthCheck bool
}

// Logging returns a middleware that logs one entry per request.
func Logging(logger *zap.Logger) gin.HandlerFunc {
	return LoggingWithConfig(LoggingConfig{Logger: logger})
}

func isHealthCheckPath(path string) bool {
	return path == "/health" || path == "/ready" || path == "/live"
}

func buildLogFields(c *gin.Context, requestID, path string, latency time.Duration, status int) []zap.Field {
	fields := []zap.Field{
		zap.String("requestID", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", path),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Int("status", status),
		zap.Duration("latency", latency),
		zap.String("clientIP", c.ClientIP()),
		zap.String("userAgent", c.Request.UserAgent()),
		zap.Int("bodySize", c.Writer.Size()),
	}

	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("errors", c.Errors.String()))
	}

	return fields
}

// logRequestByStatus logs at Error for 5xx, Warn for 4xx, Info otherwise.
func logRequestByStatus(logger *zap.Logger, status int, fields []zap.Field) {
	switch {
	case status >= 500:
		logger.Error("request completed", fields...)
	case status >= 400:
		logger.Warn("request completed", fields...)
	default:
		logger.Info("request completed", fields...)
	}
}

// LoggingWithConfig returns a logging middleware with custom configuration.
// It also stores a logger carrying the request ID under LoggerKey.
func LoggingWithConfig(config LoggingConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		requestID := GetRequestID(c)
		if requestID == "" {
			requestID = c.GetHeader(RequestIDHeader)
		}
		c.Set(LoggerKey, config.Logger.With(zap.String("requestID", requestID)))

		if skipPaths[path] || (config.SkipHealthCheck && isHealthCheckPath(path)) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		logRequestByStatus(config.Logger, status, buildLogFields(c, requestID, path, latency, status))
	}
}

// GetLogger returns the request-scoped logger, or fallback when none is set.
func GetLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if logger, exists := c.Get(LoggerKey); exists {
		if l, ok := logger.(*zap.Logger); ok {
			return l
		}
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
