package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// GracefulShutdown stops srv, giving in-flight requests up to timeout to
// finish.
func GracefulShutdown(srv *http.Server, timeout time.Duration, logger *zap.Logger) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger.Info("Shutting down gracefully", zap.String("addr", srv.Addr), zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		return err
	}

	logger.Info("Server exiting", zap.String("addr", srv.Addr))
	return nil
}
