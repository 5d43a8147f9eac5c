package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging_LevelByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "success", status: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "client error", status: http.StatusBadRequest, wantLevel: zapcore.WarnLevel},
		{name: "server error", status: http.StatusBadGateway, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(RequestID(), Logging(zap.New(core)))
			router.GET("/test", func(c *gin.Context) {
				c.Status(tt.status)
			})

			req := httptest.NewRequest(http.MethodGet, "/test?location=Austin", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			router.ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, "request completed", entries[0].Message)

			fields := entries[0].ContextMap()
			assert.Equal(t, "req-1", fields["requestID"])
			assert.Equal(t, "GET", fields["method"])
			assert.Equal(t, "/test", fields["path"])
			assert.Equal(t, "location=Austin", fields["query"])
			assert.Equal(t, int64(tt.status), fields["status"])
		})
	}
}

func TestLogging_SkipPaths(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(LoggingWithConfig(LoggingConfig{
		Logger:          zap.New(core),
		SkipPaths:       []string{"/metrics"},
		SkipHealthCheck: true,
	}))
	for _, path := range []string{"/metrics", "/health", "/ready", "/live", "/"} {
		router.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, path := range []string{"/metrics", "/health", "/ready", "/live", "/"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/", entries[0].ContextMap()["path"])
}

func TestLogging_NilLogger(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(Logging(nil))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RequestID(), Logging(zap.NewNop()))

	fallback := zap.New(core)
	router.GET("/", func(c *gin.Context) {
		GetLogger(c, fallback).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	// The request-scoped logger is derived from the middleware logger, not the fallback.
	assert.Equal(t, 0, logs.Len())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, fallback, GetLogger(c, fallback))
	assert.NotNil(t, GetLogger(c, nil))
}

func TestGetLogger_CarriesRequestID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(RequestID(), LoggingWithConfig(LoggingConfig{
		Logger:    zap.New(core),
		SkipPaths: []string{"/"},
	}))
	router.GET("/", func(c *gin.Context) {
		GetLogger(c, nil).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("inside handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["requestID"])
}
