package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mirrorsensei/sensei/internal/logging"
	"github.com/mirrorsensei/sensei/internal/session"
)

const shutdownTimeout = 10 * time.Second

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it
// down gracefully. Generation calls have no deadline, so there is no
// write timeout.
func Serve(ctx context.Context, addr string, handler http.Handler, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// StartSessionPruner drops sessions idle for longer than maxIdle, checking
// every maxIdle/4 (at least once a minute) until ctx is cancelled.
func StartSessionPruner(ctx context.Context, sessions *session.Manager, maxIdle time.Duration, log *logging.Logger) {
	if maxIdle <= 0 {
		return
	}
	every := min(maxIdle/4, time.Minute)
	if every <= 0 {
		every = maxIdle
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.Prune(maxIdle); n > 0 {
					log.Info("pruned idle sessions", "count", n, "remaining", sessions.Len())
				}
			}
		}
	}()
}
