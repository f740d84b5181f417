package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"PriceSniper/internal/logger"
)

// Server wraps the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// card rendering waits on two tracker calls
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	logger.L.Infow("starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.L.Errorw("HTTP server error", "error", err)
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.L.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.L.Errorw("HTTP server shutdown error", "error", err)
		return err
	}
	logger.L.Info("HTTP server shut down successfully")
	return nil
}
