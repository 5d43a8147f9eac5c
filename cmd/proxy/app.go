package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/restoproxy/internal/config"
	"github.com/vyrodovalexey/restoproxy/internal/health"
	"github.com/vyrodovalexey/restoproxy/internal/middleware"
	"github.com/vyrodovalexey/restoproxy/internal/observability"
	"github.com/vyrodovalexey/restoproxy/internal/restaurants"
	"github.com/vyrodovalexey/restoproxy/internal/server"
	"github.com/vyrodovalexey/restoproxy/internal/upstream"
)

const (
	apiPrefix  = "/api/yelp/restaurants"
	rootBanner = "Hello World!"
)

// application holds all application components.
type application struct {
	server        *server.Server
	healthChecker *health.Checker
	metrics       *observability.Metrics
	tracer        *observability.Tracer
	breaker       *upstream.Breaker
	config        *config.Config
	logger        *zap.Logger
}

// newApplication wires every component from the configuration.
func newApplication(cfg *config.Config, logger *zap.Logger) (*application, error) {
	metrics := observability.NewMetrics(config.DefaultServiceName)
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, err
	}

	app := &application{
		healthChecker: health.NewChecker(version),
		metrics:       metrics,
		tracer:        tracer,
		config:        cfg,
		logger:        logger,
	}

	client, err := app.newUpstreamClient()
	if err != nil {
		return nil, err
	}

	var breakerState health.BreakerStater
	if app.breaker != nil {
		breakerState = app.breaker
	}
	app.healthChecker.RegisterCheck("upstream", health.BreakerCheck(breakerState))

	app.server = server.New(server.Config{
		Address:        cfg.Server.Address,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout.Duration(),
		WriteTimeout:   cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:    cfg.Server.IdleTimeout.Duration(),
		MaxHeaderBytes: server.DefaultConfig().MaxHeaderBytes,
	}, logger)

	app.setupRoutes(app.server.Engine(), restaurants.NewHandler(client, logger))

	return app, nil
}

func (app *application) newUpstreamClient() (*upstream.Client, error) {
	up := app.config.Upstream

	opts := []upstream.Option{
		upstream.WithTimeout(up.Timeout.Duration()),
		upstream.WithMaxResponseBytes(up.MaxResponseBytes),
		upstream.WithUserAgent("restoproxy/" + version),
		upstream.WithLogger(app.logger),
		upstream.WithMetrics(app.metrics),
		upstream.WithTracer(app.tracer),
	}

	if up.CircuitBreaker.Enabled {
		app.breaker = upstream.NewBreaker(
			upstream.BreakerConfig{
				Name:      "upstream",
				Threshold: up.CircuitBreaker.Threshold,
				Timeout:   up.CircuitBreaker.Timeout.Duration(),
			},
			upstream.WithBreakerLogger(app.logger),
			upstream.WithBreakerStateCallback(app.metrics.SetCircuitBreakerState),
		)
		opts = append(opts, upstream.WithBreaker(app.breaker))
	}

	return upstream.NewClient(up.BaseURL, opts...)
}

// setupRoutes installs the middleware chain and every route on engine.
func (app *application) setupRoutes(engine *gin.Engine, handler *restaurants.Handler) {
	metricsPath := app.config.Metrics.Path

	engine.Use(
		middleware.Recovery(app.logger),
		middleware.RequestID(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:          app.logger,
			SkipPaths:       []string{metricsPath},
			SkipHealthCheck: true,
		}),
		middleware.TracingWithConfig(middleware.TracingConfig{
			Tracer:    app.tracer,
			SkipPaths: []string{metricsPath, health.HealthPath, health.ReadinessPath, health.LivenessPath},
		}),
		middleware.Metrics(app.metrics),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins:  app.config.CORS.AllowOrigins,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        middleware.DefaultCORSConfig().MaxAge,
		}),
	)

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, rootBanner)
	})

	app.healthChecker.Register(engine)

	if app.config.Metrics.Enabled {
		engine.GET(metricsPath, gin.WrapH(app.metrics.Handler()))
	}

	handler.Register(engine.Group(apiPrefix))
}
