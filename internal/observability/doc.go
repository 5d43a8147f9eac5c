// Package observability provides logging, metrics, and tracing
// for the restaurant proxy.
//
// # Logging
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer func() { _ = logger.Sync() }()
//
// # Metrics
//
// Prometheus metrics for inbound requests and upstream calls, served from a
// private registry:
//
//	metrics := observability.NewMetrics("restoproxy")
//	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
//
// # Tracing
//
// OpenTelemetry tracing with optional OTLP/gRPC export. A disabled tracer
// still hands out no-op spans so callers never branch on it.
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{ServiceName: "restoproxy"})
package observability
