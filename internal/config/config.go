package config

import (
	"time"
)

// Default values.
const (
	DefaultPort             = 3000
	DefaultUpstreamBaseURL  = "https://api.yelp.com/v3"
	DefaultUpstreamTimeout  = 10 * time.Second
	DefaultMaxResponseBytes = 10 << 20
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultMetricsPath      = "/metrics"
	DefaultServiceName      = "restoproxy"
)

// Config is the root proxy configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
	CORS     CORSConfig     `yaml:"cors" json:"cors"`
}

// ServerConfig configures the inbound HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address" json:"address"`
	Port            int      `yaml:"port" json:"port"`
	ReadTimeout     Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout" json:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// UpstreamConfig configures calls to the business-directory API.
type UpstreamConfig struct {
	BaseURL          string               `yaml:"baseURL" json:"baseURL"`
	Timeout          Duration             `yaml:"timeout" json:"timeout"`
	MaxResponseBytes int64                `yaml:"maxResponseBytes" json:"maxResponseBytes"`
	CircuitBreaker   CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`
}

// CircuitBreakerConfig configures the optional upstream circuit breaker.
// The breaker never retries; it only fails fast while open.
type CircuitBreakerConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Threshold is the minimum number of requests in an interval before the
	// failure ratio is evaluated.
	Threshold int `yaml:"threshold" json:"threshold"`
	// Timeout is how long the breaker stays open before probing again.
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
}

// CORSConfig configures cross-origin access for browser clients.
type CORSConfig struct {
	AllowOrigins []string `yaml:"allowOrigins" json:"allowOrigins"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Upstream: UpstreamConfig{
			BaseURL:          DefaultUpstreamBaseURL,
			Timeout:          Duration(DefaultUpstreamTimeout),
			MaxResponseBytes: DefaultMaxResponseBytes,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:   false,
				Threshold: 10,
				Timeout:   Duration(30 * time.Second),
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ServiceName:  DefaultServiceName,
			SamplingRate: 1.0,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}
