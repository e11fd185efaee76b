package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// =============================================================================
// Server
// =============================================================================

// Server runs the status API over HTTP.
type Server struct {
	addr    string
	handler http.Handler
	logger  *slog.Logger
	srv     *http.Server
}

// NewServer creates a status API server.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:7788"
	}
	return &Server{
		addr:    addr,
		handler: handler,
		logger:  logger.With("component", "api"),
	}
}

// Start starts the server (non-blocking).
func (s *Server) Start() {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.Info("starting status API", "address", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status API error", "error", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("stopping status API")
	return s.srv.Shutdown(ctx)
}
