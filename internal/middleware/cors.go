package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowOrigins is a list of origins that may access the resource.
	// Use "*" to allow all origins.
	AllowOrigins []string

	AllowMethods  []string
	AllowHeaders  []string
	ExposeHeaders []string

	// MaxAge is how long, in seconds, a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig returns a CORS config for a browser client calling the
// read-only API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        86400,
	}
}

type corsContext struct {
	config           CORSConfig
	allowAllOrigins  bool
	allowMethodsStr  string
	allowHeadersStr  string
	exposeHeadersStr string
	maxAgeStr        string
}

func newCORSContext(config CORSConfig) *corsContext {
	defaults := DefaultCORSConfig()
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = defaults.AllowOrigins
	}
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = defaults.AllowMethods
	}
	if len(config.AllowHeaders) == 0 {
		config.AllowHeaders = defaults.AllowHeaders
	}

	allowAllOrigins := false
	for _, origin := range config.AllowOrigins {
		if origin == "*" {
			allowAllOrigins = true
			break
		}
	}

	return &corsContext{
		config:           config,
		allowAllOrigins:  allowAllOrigins,
		allowMethodsStr:  strings.Join(config.AllowMethods, ", "),
		allowHeadersStr:  strings.Join(config.AllowHeaders, ", "),
		exposeHeadersStr: strings.Join(config.ExposeHeaders, ", "),
		maxAgeStr:        strconv.Itoa(config.MaxAge),
	}
}

// CORS returns a CORS middleware with the given configuration.
func CORS(config CORSConfig) gin.HandlerFunc {
	ctx := newCORSContext(config)

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		if !ctx.allowAllOrigins && !isOriginAllowed(origin, ctx.config.AllowOrigins) {
			c.Next()
			return
		}

		if ctx.allowAllOrigins {
			c.Header("Access-Control-Allow-Origin", "*")
		} else {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		if ctx.exposeHeadersStr != "" {
			c.Header("Access-Control-Expose-Headers", ctx.exposeHeadersStr)
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", ctx.allowMethodsStr)
			c.Header("Access-Control-Allow-Headers", ctx.allowHeadersStr)
			c.Header("Access-Control-Max-Age", ctx.maxAgeStr)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
