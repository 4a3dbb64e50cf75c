package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prxgr4mmer/crypto-service/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Server serves the market-data API. Listen binds the port up front so a
// taken port fails startup instead of a background goroutine.
type Server struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
}

// NewServer builds the chi router over deps and wraps it in an http.Server
func NewServer(cfg config.ServerConfig, deps HandlerDeps, logger *slog.Logger) *Server {
	router := NewRouter(NewHandler(deps, logger), cfg.CORSOrigins, logger)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		logger: logger.With("component", "http_server"),
	}
}

// Listen binds the configured address. Port 0 picks a free port.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln
	return nil
}

// Start serves requests until Shutdown, binding first if needed
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.logger.Info("serving market data api", "addr", s.Addr())

	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, waiting at most 30s
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the bound address once listening, the configured one before
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}
