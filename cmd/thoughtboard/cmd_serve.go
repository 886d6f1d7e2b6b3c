package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/thoughtboard/internal/api"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		grace time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP/JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			if addr == "" {
				addr = cfg.API.ListenAddr
			}

			s, err := openBoard(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = s.Close() }()

			var metricsHandler http.Handler
			if s.collector != nil {
				metricsHandler = s.collector.Handler()
			}
			if cfg.API.AuthToken == "" {
				logger.Warn("HTTP API: auth is DISABLED; set THOUGHTBOARD_API_AUTH_TOKEN or api.auth_token for production use")
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("serve: listening on %s: %w", addr, err)
			}
			httpSrv := &http.Server{
				Handler:           api.NewServer(s.board, metricsHandler, logger, cfg.API.AuthToken).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			logger.Info("HTTP API server starting", "addr", ln.Addr().String(), "backend", cfg.Storage.Backend)
			if err := runHTTP(cmd.Context(), httpSrv, ln, grace, logger); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default api.listen_addr)")
	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "time allowed for in-flight requests on shutdown")
	return cmd
}

// runHTTP serves on ln until ctx is cancelled or the server fails. On
// cancellation in-flight requests get grace to finish.
func runHTTP(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, logger *slog.Logger) error {
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		return fmt.Errorf("HTTP server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", grace)
	if err := api.Shutdown(srv, grace); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server: %w", err)
	}
	return nil
}
