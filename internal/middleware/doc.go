// Package middleware provides the gin middleware chain for the proxy:
// request IDs, access logging, panic recovery, tracing, metrics, and CORS.
//
// Recommended order:
//
//	engine.Use(
//	    middleware.Recovery(logger),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	    middleware.Tracing(tracer),
//	    middleware.Metrics(metrics),
//	    middleware.CORS(corsConfig),
//	)
package middleware
