package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/valyala/fasthttp"
)

// ServerConfig configures the fasthttp server.
type ServerConfig struct {
	Addr               string
	Name               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	MaxRequestBodySize int
}

// Server runs a fasthttp server in the background.
type Server struct {
	config   ServerConfig
	server   *fasthttp.Server
	listener net.Listener
	logger   *slog.Logger
	errs     chan error
}

func NewServer(config ServerConfig, handler fasthttp.RequestHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Name == "" {
		config.Name = "todos"
	}
	return &Server{
		config: config,
		logger: logger,
		errs:   make(chan error, 1),
		server: &fasthttp.Server{
			Handler:               handler,
			Name:                  config.Name,
			NoDefaultServerHeader: true,
			ReadTimeout:           config.ReadTimeout,
			WriteTimeout:          config.WriteTimeout,
			IdleTimeout:           config.IdleTimeout,
			MaxRequestBodySize:    config.MaxRequestBodySize,
		},
	}
}

// Start binds the listening socket and serves in a goroutine. Bind errors
// are returned directly; later serve errors arrive on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			s.errs <- err
		}
		close(s.errs)
	}()
	return nil
}

// Addr returns the bound address, useful when configured with port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Errors reports serve failures. Closed after the server stops.
func (s *Server) Errors() <-chan error {
	return s.errs
}

// Stop waits for in-flight requests up to ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	s.logger.Info("http server stopping")
	err := s.server.ShutdownWithContext(ctx)
	// Serve may not have registered the listener yet.
	if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}
