package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// run serves until SIGINT or SIGTERM and then shuts down gracefully.
func run(app *application) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, app)
}

// serve runs the server until ctx is done or the server fails.
func serve(ctx context.Context, app *application) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Start(context.WithoutCancel(ctx))
	}()

	select {
	case err := <-errCh:
		app.shutdownTelemetry()
		return err
	case <-ctx.Done():
		app.logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	var stopErr error
	if err := app.server.Stop(shutdownCtx); err != nil {
		app.logger.Error("failed to stop server gracefully", zap.Error(err))
		stopErr = err
	}

	if err := <-errCh; err != nil && stopErr == nil {
		stopErr = err
	}

	app.shutdownTelemetry()
	app.logger.Info("restoproxy stopped")
	return stopErr
}

func (app *application) shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := app.tracer.Shutdown(ctx); err != nil {
		app.logger.Error("failed to shutdown tracer", zap.Error(err))
	}
}
