package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/connectionmanager"
	"gitlab.com/otp-enc.net/internal/tcp/defs"
)

// TCPServer accepts encryption clients and runs one worker goroutine per connection.
//
// At most maxWorkers connections are serviced at once. When every slot is busy the
// admission loop stops accepting and further clients wait in the listen backlog.
type TCPServer struct {
	address    string
	maxWorkers int64
	handler    primary.ConnectionHandler
	logger     primary.Logger
	listener   net.Listener

	// owned by the admission loop goroutine
	registry *connectionmanager.WorkerRegistry

	slots    *semaphore.Weighted
	ctx      context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}
	workers  sync.WaitGroup
	running  atomic.Bool

	active    atomic.Int64
	accepted  atomic.Uint64
	completed atomic.Uint64
	rejected  atomic.Uint64
	failed    atomic.Uint64
}

// TCPServerOption configures a TCPServer
type TCPServerOption func(*TCPServer)

// WithAddress sets the server address
func WithAddress(address string) TCPServerOption {
	return func(s *TCPServer) {
		s.address = address
	}
}

// WithMaxWorkers sets how many connections may be serviced concurrently
func WithMaxWorkers(n int) TCPServerOption {
	return func(s *TCPServer) {
		if n > 0 {
			s.maxWorkers = int64(n)
		}
	}
}

// NewTCPServer creates a new TCP server
func NewTCPServer(
	handler primary.ConnectionHandler,
	logger primary.Logger,
	options ...TCPServerOption,
) *TCPServer {
	server := &TCPServer{
		address:    fmt.Sprintf("%s:%d", defs.DefaultHost, defs.DefaultPort),
		maxWorkers: defs.DefaultMaxWorkers,
		handler:    handler,
		logger:     logger,
		registry:   connectionmanager.NewWorkerRegistry(),
	}

	// Apply options
	for _, option := range options {
		option(server)
	}

	server.slots = semaphore.NewWeighted(server.maxWorkers)
	return server
}

// Start starts listening and runs the admission loop in the background
func (s *TCPServer) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: failed to start TCP server: %w", errs.ErrTransport, err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.loopDone = make(chan struct{})
	s.running.Store(true)

	s.logger.Info("TCP server listening", "address", listener.Addr().String(), "maxWorkers", s.maxWorkers)

	go s.acceptConnections()

	return nil
}

// Stop closes the listener and waits for in-flight workers until ctx is done.
// Running workers are not interrupted.
func (s *TCPServer) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.cancel()
	if err := s.listener.Close(); err != nil {
		s.logger.Error("Failed to close listener", "error", err)
	}
	<-s.loopDone

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("TCP server stopped", "served", s.completed.Load())
		return nil
	case <-ctx.Done():
		s.logger.Warn("TCP server stopped with workers still running", "active", s.active.Load())
		return ctx.Err()
	}
}

// Addr returns the listen address, nil before Start
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats returns a snapshot of the admission counters. Safe to call from any goroutine.
func (s *TCPServer) Stats() domain.ServerStats {
	address := s.address
	if addr := s.Addr(); addr != nil {
		address = addr.String()
	}
	return domain.ServerStats{
		Address:       address,
		Capacity:      s.maxWorkers,
		ActiveWorkers: s.active.Load(),
		Accepted:      s.accepted.Load(),
		Completed:     s.completed.Load(),
		Rejected:      s.rejected.Load(),
		Failed:        s.failed.Load(),
	}
}

// acceptConnections is the admission loop: reap, wait for a free slot, accept, dispatch.
func (s *TCPServer) acceptConnections() {
	defer close(s.loopDone)

	for {
		if n := s.registry.ReapFinished(); n > 0 {
			s.logger.Debug("Reaped finished workers", "count", n, "outstanding", s.registry.Len())
		}

		if err := s.slots.Acquire(s.ctx, 1); err != nil {
			return
		}

		conn, err := s.acceptNext()
		if err != nil {
			s.slots.Release(1)
			if s.ctx.Err() != nil {
				return
			}
			s.logger.Error("Failed to accept connection", "error", err)
			// Avoid tight loop on error
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(defs.ConnectionRetryDelay):
			}
			continue
		}

		s.dispatch(conn)
	}
}

// acceptNext blocks until a client connects
func (s *TCPServer) acceptNext() (net.Conn, error) {
	return s.listener.Accept()
}

// dispatch hands conn to a new worker goroutine and returns immediately.
// The caller must hold an admission slot; the worker releases it.
func (s *TCPServer) dispatch(conn net.Conn) {
	handle := s.registry.Track(conn.RemoteAddr().String())
	s.accepted.Add(1)
	s.active.Add(1)
	s.workers.Add(1)

	s.logger.Info("Connection accepted", "sessionId", handle.ID, "remote", handle.RemoteAddr)

	go s.handleConnection(conn, handle)
}

// handleConnection runs one worker. Failures end only this connection.
func (s *TCPServer) handleConnection(conn net.Conn, handle *connectionmanager.WorkerHandle) {
	defer s.workers.Done()
	defer s.slots.Release(1)
	defer s.active.Add(-1)
	defer handle.Finish()
	defer conn.Close()

	err := s.handler.HandleConnection(context.WithoutCancel(s.ctx), conn, handle.ID)
	switch {
	case err == nil:
		s.completed.Add(1)
	case errors.Is(err, errs.ErrHandshakeRejected):
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
	}
}
