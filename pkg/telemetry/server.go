// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/netping/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes the registry of a run over HTTP.
type Server struct {
	server *http.Server
}

// NewServer returns a server serving /metrics from registry and /healthz on addr.
func NewServer(ctx context.Context, addr string, registry *prometheus.Registry) *Server {
	r := chi.NewRouter()
	r.Use(logger.Middleware(ctx))
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Handler returns the router of the server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is done and shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).With("address", s.server.Addr)

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		log.ErrorContext(ctx, "Failed to listen for metrics", "error", err)
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	cErr := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Serving metrics")
		cErr <- s.server.Serve(ln)
	}()

	select {
	case err := <-cErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	sCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(sCtx); err != nil {
		log.ErrorContext(ctx, "Failed to shutdown metrics server", "error", err)
		return fmt.Errorf("failed to shutdown metrics server: %w", err)
	}
	log.DebugContext(ctx, "Metrics server stopped")
	return nil
}
