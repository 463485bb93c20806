// Package http hosts the continuity API: the chi route tree and the
// http.Server lifecycle around it.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
)

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// Server owns the http.Server serving the route tree.
type Server struct {
	srv             *http.Server
	router          http.Handler
	logger          logging.Logger
	shutdownTimeout time.Duration
}

// NewServer builds a Server on cfg.Port.  Document rendering can take
// seconds, so the write timeout defaults well above the read timeout.
func NewServer(cfg config.ServerConfig, router http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	read, write, shutdown := cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout
	if read <= 0 {
		read = defaultReadTimeout
	}
	if write <= 0 {
		write = defaultWriteTimeout
	}
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	return &Server{
		router:          router,
		logger:          logger,
		shutdownTimeout: shutdown,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadTimeout:       read,
			ReadHeaderTimeout: read,
			WriteTimeout:      write,
			IdleTimeout:       defaultIdleTimeout,
		},
	}
}

// Start serves until Stop is called.  A clean shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Handler returns the route tree.
func (s *Server) Handler() http.Handler {
	return s.router
}

//Personal.AI order the ending
