package restaurants

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/restoproxy/internal/middleware"
	"github.com/vyrodovalexey/restoproxy/internal/upstream"
)

// Upstream paths.
const (
	searchPath     = "/businesses/search"
	businessPrefix = "/businesses/"
	searchTerm     = "restaurants"
)

// Fetcher performs upstream calls. Errors are expected to be *upstream.Error.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values, authorization string) (json.RawMessage, error)
}

// Handler serves the restaurant endpoints.
type Handler struct {
	client Fetcher
	logger *zap.Logger
}

// NewHandler creates a handler backed by the given upstream client.
func NewHandler(client Fetcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, logger: logger}
}

// Register mounts GET /search and GET /:id on the group.
func (h *Handler) Register(rg gin.IRoutes) {
	rg.GET("/search", h.SearchRestaurants)
	rg.GET("/:id", h.GetRestaurantByID)
}

// SearchRestaurants proxies a restaurant search. All inbound query parameters
// are forwarded and term is forced to "restaurants".
func (h *Handler) SearchRestaurants(c *gin.Context) {
	authorization, ok := h.authorize(c)
	if !ok {
		return
	}

	query := c.Request.URL.Query()
	if err := ValidateSearchParams(query); err != nil {
		h.rejectRequest(c, err)
		return
	}

	params := make(url.Values, len(query)+1)
	for key, values := range query {
		params[key] = values
	}
	params.Set("term", searchTerm)

	h.proxy(c, searchPath, params, authorization)
}

// GetRestaurantByID proxies a business detail lookup.
func (h *Handler) GetRestaurantByID(c *gin.Context) {
	authorization, ok := h.authorize(c)
	if !ok {
		return
	}

	h.proxy(c, businessPrefix+c.Param("id"), nil, authorization)
}

func (h *Handler) authorize(c *gin.Context) (string, bool) {
	authorization, err := ValidateAuthorization(c.Request.Header)
	if err != nil {
		h.rejectRequest(c, err)
		return "", false
	}
	return authorization, true
}

func (h *Handler) rejectRequest(c *gin.Context, err error) {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		h.internalError(c, err)
		return
	}

	middleware.GetLogger(c, h.logger).Warn("request validation failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("field", vErr.Field),
		zap.String("reason", vErr.Reason),
	)
	c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message})
}

func (h *Handler) proxy(c *gin.Context, path string, params url.Values, authorization string) {
	body, err := h.client.Fetch(c.Request.Context(), path, params, authorization)
	if err != nil {
		var upErr *upstream.Error
		if !errors.As(err, &upErr) {
			h.internalError(c, err)
			return
		}
		_ = c.Error(err)
		c.JSON(upErr.StatusCode, gin.H{"error": upErr.Message})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	middleware.GetLogger(c, h.logger).Error("unexpected error handling request",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	middleware.AbortWithInternalError(c)
}
