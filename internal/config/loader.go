package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvPort               = "PORT"
	EnvUpstreamBaseURL    = "PROXY_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout    = "PROXY_UPSTREAM_TIMEOUT"
	EnvLogLevel           = "PROXY_LOG_LEVEL"
	EnvLogFormat          = "PROXY_LOG_FORMAT"
	EnvMetricsEnabled     = "PROXY_METRICS_ENABLED"
	EnvTracingEnabled     = "PROXY_TRACING_ENABLED"
	EnvTracingEndpoint    = "PROXY_TRACING_OTLP_ENDPOINT"
	EnvCircuitBreaker     = "PROXY_CIRCUIT_BREAKER_ENABLED"
	EnvCORSAllowedOrigins = "PROXY_CORS_ALLOW_ORIGINS"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Path is an optional YAML file. Empty means defaults plus environment.
	Path string

	// EnvFiles are dotenv files loaded before the environment is read.
	// Missing files are ignored. Nil means DefaultEnvFile.
	EnvFiles []string
}

// Load builds the configuration from defaults, the optional file and the
// environment, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	if opts.Path != "" {
		data, err := os.ReadFile(filepath.Clean(opts.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.Path, err)
		}
		if err := parseInto(cfg, data); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromReader parses YAML from r over the defaults. The environment is
// not consulted beyond ${VAR} substitution.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := parseInto(cfg, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles seeds the process environment from dotenv files.
// godotenv.Load never overrides variables that are already set.
func loadEnvFiles(files []string) error {
	if files == nil {
		files = []string{DefaultEnvFile}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}

// parseInto substitutes environment variables and decodes YAML into cfg.
func parseInto(cfg *Config, data []byte) error {
	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
// A literal dollar sign is written as $$.
func substituteEnvVars(content string) string {
	content = strings.ReplaceAll(content, "$$", "\x00ESCAPED_DOLLAR\x00")

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		if value, exists := os.LookupEnv(submatches[1]); exists {
			return value
		}
		if len(submatches) >= 3 {
			return submatches[2]
		}
		return ""
	})

	return strings.ReplaceAll(result, "\x00ESCAPED_DOLLAR\x00", "$")
}

// applyEnv overrides cfg with environment variables that are set.
func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return NewFieldError(EnvPort, "must be an integer", err)
		}
		cfg.Server.Port = port
	}

	if v, ok := lookupEnv(EnvUpstreamBaseURL); ok {
		cfg.Upstream.BaseURL = v
	}

	if v, ok := lookupEnv(EnvUpstreamTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return NewFieldError(EnvUpstreamTimeout, "must be a duration", err)
		}
		cfg.Upstream.Timeout = Duration(d)
	}

	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}

	if v, ok := lookupEnv(EnvLogFormat); ok {
		cfg.Logging.Format = v
	}

	if v, ok := lookupEnv(EnvTracingEndpoint); ok {
		cfg.Tracing.OTLPEndpoint = v
	}

	if v, ok := lookupEnv(EnvCORSAllowedOrigins); ok {
		cfg.CORS.AllowOrigins = splitList(v)
	}

	boolVars := []struct {
		name   string
		target *bool
	}{
		{EnvMetricsEnabled, &cfg.Metrics.Enabled},
		{EnvTracingEnabled, &cfg.Tracing.Enabled},
		{EnvCircuitBreaker, &cfg.Upstream.CircuitBreaker.Enabled},
	}
	for _, bv := range boolVars {
		v, ok := lookupEnv(bv.name)
		if !ok {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return NewFieldError(bv.name, "must be a boolean", err)
		}
		*bv.target = b
	}

	return nil
}

// lookupEnv returns the trimmed value of a non-empty environment variable.
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// parseBool accepts the usual boolean spellings, including yes/no and on/off.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
