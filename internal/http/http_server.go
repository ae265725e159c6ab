package http

// this is entry point of the status http endpoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/handlers"
	"gitlab.com/otp-enc.net/internal/handlers/status"
	"gitlab.com/otp-enc.net/internal/static/errs"
)

type ServiceProvider struct {
	stats       status.StatsProvider
	sessionRepo secondary.SessionRepository
}

func NewServiceProvider(stats status.StatsProvider, sessionRepo secondary.SessionRepository) *ServiceProvider {
	return &ServiceProvider{
		stats:       stats,
		sessionRepo: sessionRepo,
	}
}

type Server struct {
	router          *mux.Router
	Host            string
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
	srv             *http.Server
	listener        net.Listener
}

func NewServer(host string, port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Host:            host,
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()
	r.Use(handlers.New(s.logger).AccessLog)
	status.NewHandler(s.ServiceProvider.stats, s.ServiceProvider.sessionRepo, s.logger).Register(r)
	s.router = r
	return nil
}

// Handler exposes the router, Init must have been called
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the port and serves in the background. Bind errors are returned.
func (s *Server) Start(_ context.Context) error {
	if s.router == nil {
		return errors.New("http server not initialised")
	}

	s.srv = &http.Server{
		Addr:         net.JoinHostPort(s.Host, fmt.Sprint(s.Port)),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("%w: failed to start %s http server: %w", errs.ErrTransport, s.ServiceName, err)
	}
	s.listener = listener

	go func() {
		s.logger.Info("Server listening", "service", s.ServiceName, "addr", listener.Addr().String())
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, nil before Start
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down http server...")
	return s.srv.Shutdown(ctx)
}
