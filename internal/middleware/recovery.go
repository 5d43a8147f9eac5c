package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// InternalServerErrorMessage is the message of every unexpected-error response.
const InternalServerErrorMessage = "Internal Server Error"

// RecoveryConfig holds configuration for the recovery middleware.
type RecoveryConfig struct {
	Logger           *zap.Logger
	EnableStackTrace bool
}

// Recovery returns a middleware that recovers from panics.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return RecoveryWithConfig(RecoveryConfig{
		Logger:           logger,
		EnableStackTrace: true,
	})
}

// RecoveryWithConfig returns a recovery middleware with custom configuration.
func RecoveryWithConfig(config RecoveryConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("clientIP", c.ClientIP()),
				}

				if requestID := GetRequestID(c); requestID != "" {
					fields = append(fields, zap.String("requestID", requestID))
				}

				if config.EnableStackTrace {
					fields = append(fields, zap.ByteString("stack", debug.Stack()))
				}

				config.Logger.Error("panic recovered", fields...)

				if span := GetSpan(c); span != nil {
					span.RecordError(fmt.Errorf("panic: %v", err))
					span.SetStatus(codes.Error, "panic")
				}

				AbortWithInternalError(c)
			}
		}()

		c.Next()
	}
}

// AbortWithInternalError writes the generic 500 body
// {"error":{"message":"Internal Server Error"}} and aborts the chain.
func AbortWithInternalError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"message": InternalServerErrorMessage},
	})
}
