// Package main is the entry point for the restaurant search proxy.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/restoproxy/internal/config"
	"github.com/vyrodovalexey/restoproxy/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags(os.Args[1:])

	if flags.showVersion {
		printVersion()
		return
	}

	cfg, err := config.Load(config.LoadOptions{Path: flags.configPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, flags)

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting restoproxy",
		zap.String("version", version),
		zap.String("config", flags.configPath),
		zap.Int("port", cfg.Server.Port),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	app, err := newApplication(cfg, logger)
	if err != nil {
		fatalWithSync(logger, "failed to initialize application", zap.Error(err))
		return
	}

	if err := run(app); err != nil {
		fatalWithSync(logger, "proxy stopped with error", zap.Error(err))
	}
}

// parseFlags parses command line flags. Empty log flags leave the
// configured values untouched.
func parseFlags(args []string) cliFlags {
	fs := flag.NewFlagSet("restoproxy", flag.ExitOnError)
	configPath := fs.String("config", getEnvOrDefault("PROXY_CONFIG_PATH", ""),
		"Path to an optional YAML configuration file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, console)")
	showVersion := fs.Bool("version", false, "Show version information")
	_ = fs.Parse(args)

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

func applyFlagOverrides(cfg *config.Config, flags cliFlags) {
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("restoproxy version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// fatalWithSync flushes the logger before exiting.
func fatalWithSync(logger *zap.Logger, msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
	_ = logger.Sync()
	os.Exit(1)
}
