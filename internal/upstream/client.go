package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/restoproxy/internal/observability"
)

// Client defaults.
const (
	DefaultTimeout          = 10 * time.Second
	DefaultMaxResponseBytes = 10 << 20
	DefaultUserAgent        = "restoproxy"
)

// Endpoint labels used for metrics and span names.
const (
	EndpointSearch   = "/businesses/search"
	EndpointBusiness = "/businesses/{id}"
	EndpointOther    = "other"
)

// MetricsRecorder records upstream call outcomes. A zero status means no
// HTTP response was received.
type MetricsRecorder interface {
	ObserveUpstream(endpoint string, status int, duration time.Duration)
}

// Client issues GET requests against the upstream API.
type Client struct {
	baseURL          *url.URL
	httpClient       *http.Client
	logger           *zap.Logger
	metrics          MetricsRecorder
	tracer           *observability.Tracer
	breaker          *Breaker
	maxResponseBytes int64
	userAgent        string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer sets the tracer for client spans.
func WithTracer(t *observability.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithBreaker guards upstream calls with a circuit breaker.
func WithBreaker(b *Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

// WithMaxResponseBytes caps the size of upstream response bodies.
func WithMaxResponseBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream base URL %q: must be an absolute http(s) URL", baseURL)
	}

	c := &Client{
		baseURL:          u,
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		logger:           zap.NewNop(),
		tracer:           observability.NewTracerFromProvider(noop.NewTracerProvider(), "upstream"),
		maxResponseBytes: DefaultMaxResponseBytes,
		userAgent:        DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// callResult is what a single upstream attempt produced.
type callResult struct {
	status int
	body   []byte
}

// Fetch performs GET base+path?params with the given Authorization header.
// On success the upstream body is returned unchanged. Every returned error
// is an *Error.
func (c *Client) Fetch(
	ctx context.Context,
	path string,
	params url.Values,
	authorization string,
) (json.RawMessage, error) {
	endpoint := EndpointLabel(path)
	start := time.Now()

	ctx, span := c.tracer.StartSpan(ctx, "upstream GET "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("server.address", c.baseURL.Host),
			attribute.String("upstream.endpoint", endpoint),
		),
	)
	defer span.End()

	c.logger.Debug("calling upstream",
		zap.String("endpoint", endpoint),
		zap.String("path", path),
		zap.String("query", params.Encode()),
	)

	res, err := c.execute(ctx, path, params, authorization)
	duration := time.Since(start)

	if c.metrics != nil {
		c.metrics.ObserveUpstream(endpoint, res.status, duration)
	}
	if res.status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", res.status))
	}

	if err != nil {
		upErr := Normalize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("upstream request failed",
			zap.String("endpoint", endpoint),
			zap.Int("upstreamStatus", res.status),
			zap.Int("statusCode", upErr.StatusCode),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, upErr
	}

	c.logger.Debug("upstream request succeeded",
		zap.String("endpoint", endpoint),
		zap.Int("status", res.status),
		zap.Int("bytes", len(res.body)),
		zap.Duration("duration", duration),
	)
	return json.RawMessage(res.body), nil
}

// execute runs one attempt, through the breaker when configured.
func (c *Client) execute(
	ctx context.Context,
	path string,
	params url.Values,
	authorization string,
) (callResult, error) {
	if c.breaker == nil {
		return c.do(ctx, path, params, authorization)
	}

	var res callResult
	_, err := c.breaker.Execute(func() (interface{}, error) {
		var callErr error
		res, callErr = c.do(ctx, path, params, authorization)
		return nil, callErr
	})
	return res, err
}

func (c *Client) do(
	ctx context.Context,
	path string,
	params url.Values,
	authorization string,
) (callResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, params), http.NoBody)
	if err != nil {
		return callResult{}, err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return callResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	res := callResult{status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return res, err
	}
	if int64(len(body)) > c.maxResponseBytes {
		return res, newError(http.StatusBadGateway,
			fmt.Sprintf("upstream response exceeds %d bytes", c.maxResponseBytes),
			ErrResponseTooLarge)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &ResponseError{StatusCode: resp.StatusCode, Body: body}
	}
	if !json.Valid(body) {
		return res, newError(http.StatusInternalServerError, ErrInvalidResponse.Error(), ErrInvalidResponse)
	}

	res.body = body
	return res, nil
}

func (c *Client) buildURL(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawPath = ""
	if encoded := params.Encode(); encoded != "" {
		u.RawQuery = encoded
	}
	return u.String()
}

// EndpointLabel maps a request path to a bounded metric label.
func EndpointLabel(path string) string {
	switch {
	case path == EndpointSearch:
		return EndpointSearch
	case strings.HasPrefix(path, "/businesses/") && !strings.Contains(path[len("/businesses/"):], "/"):
		return EndpointBusiness
	default:
		return EndpointOther
	}
}
