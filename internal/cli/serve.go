package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/voyage"
	httpAdapter "github.com/aretw0/voyage/pkg/adapters/http"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, planner *voyage.Planner, addr string, logger *slog.Logger) error {
	handler := httpAdapter.NewHandler(planner, planner.Sessions(),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(planner.MetricsHandler()),
		httpAdapter.WithVersion(voyage.Version),
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("voyage server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("voyage server stopped gracefully")
		return nil
	}
}
