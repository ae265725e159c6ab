package tcp_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"gitlab.com/otp-enc.net/internal/adapter/logging"
	"gitlab.com/otp-enc.net/internal/adapter/memory/sessionstore"
	"gitlab.com/otp-enc.net/internal/core/services/cipher"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp"
	"gitlab.com/otp-enc.net/internal/tcp/client"
	"gitlab.com/otp-enc.net/internal/tcp/handlers"
)

func startServer(t *testing.T, maxWorkers int) (*tcp.TCPServer, *sessionstore.SessionStore) {
	t.Helper()
	store := sessionstore.NewSessionStore(64)
	handler := handlers.NewSessionHandler(cipher.NewCipherService(), store, logging.NewNopLogger(), 0, 10*time.Second)
	server := tcp.NewTCPServer(handler, logging.NewNopLogger(),
		tcp.WithAddress("127.0.0.1:0"),
		tcp.WithMaxWorkers(maxWorkers),
	)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server, store
}

func newClient(server *tcp.TCPServer, options ...client.ClientOption) *client.Client {
	options = append([]client.ClientOption{
		client.WithAddress(server.Addr().String()),
		client.WithIOTimeout(10 * time.Second),
	}, options...)
	return client.NewClient(options...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 10*time.Millisecond)
}

func TestEndToEndHelloWorld(t *testing.T) {
	server, _ := startServer(t, 5)

	ciphertext, err := newClient(server).Encrypt(context.Background(),
		[]byte("HELLO WORLD"), []byte("XMCKLFDTRH "))
	require.NoError(t, err)
	assert.Equal(t, "DQNVZEZGHSC", string(ciphertext))

	waitFor(t, func() bool { return server.Stats().Completed == 1 })
}

func TestConcurrentClientsAreIsolated(t *testing.T) {
	server, _ := startServer(t, 5)
	svc := cipher.NewCipherService()

	pairs := [][2]string{
		{"HELLO WORLD", "XMCKLFDTRH "},
		{"THE QUICK BROWN FOX", "ABCDEFGHIJKLMNOPQRSTUV"},
		{"JUMPS OVER", "ZZZZZZZZZZ"},
		{"THE LAZY DOG", "            "},
		{"A", "Q"},
	}

	results := make([]string, len(pairs))
	var g errgroup.Group
	for i, pair := range pairs {
		g.Go(func() error {
			out, err := newClient(server).Encrypt(context.Background(), []byte(pair[0]), []byte(pair[1]))
			if err != nil {
				return fmt.Errorf("client %d: %w", i, err)
			}
			results[i] = string(out)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, pair := range pairs {
		want, err := svc.Encrypt([]byte(pair[0]), []byte(pair[1]))
		require.NoError(t, err)
		assert.Equal(t, string(want), results[i], "client %d", i)
	}
	waitFor(t, func() bool { return server.Stats().Completed == uint64(len(pairs)) })
}

func TestRejectedClientDoesNotAffectOthers(t *testing.T) {
	server, store := startServer(t, 2)

	_, err := newClient(server, client.WithIdentity("OTP_DEC")).
		Encrypt(context.Background(), []byte("HELLO"), []byte("WORLD"))
	assert.ErrorIs(t, err, errs.ErrHandshakeRejected)

	out, err := newClient(server).Encrypt(context.Background(), []byte("HELLO"), []byte("AAAAA"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(out))

	waitFor(t, func() bool {
		s := server.Stats()
		return s.Rejected == 1 && s.Completed == 1
	})

	recent, err := store.RecentSessions(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestFailingWorkerDoesNotStopAdmission(t *testing.T) {
	server, _ := startServer(t, 1)

	// connect and hang up without speaking
	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)
	conn.Close()

	waitFor(t, func() bool { return server.Stats().Failed == 1 })

	out, err := newClient(server).Encrypt(context.Background(), []byte("B"), []byte("B"))
	require.NoError(t, err)
	assert.Equal(t, "C", string(out))
}

// blockingHandler holds every connection until release is closed.
type blockingHandler struct {
	running atomic.Int64
	peak    atomic.Int64
	release chan struct{}
	seen    sync.Map
}

func (h *blockingHandler) HandleConnection(_ context.Context, conn net.Conn, sessionID uuid.UUID) error {
	n := h.running.Add(1)
	defer h.running.Add(-1)
	for {
		p := h.peak.Load()
		if n <= p || h.peak.CompareAndSwap(p, n) {
			break
		}
	}
	h.seen.Store(sessionID, conn.RemoteAddr().String())
	<-h.release
	return nil
}

func TestAdmissionCeiling(t *testing.T) {
	const maxWorkers = 3
	const clients = 8

	h := &blockingHandler{release: make(chan struct{})}
	server := tcp.NewTCPServer(h, logging.NewNopLogger(),
		tcp.WithAddress("127.0.0.1:0"),
		tcp.WithMaxWorkers(maxWorkers),
	)
	require.NoError(t, server.Start(context.Background()))

	conns := make([]net.Conn, 0, clients)
	for i := 0; i < clients; i++ {
		conn, err := net.Dial("tcp", server.Addr().String())
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	waitFor(t, func() bool { return h.running.Load() == maxWorkers })
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, maxWorkers, server.Stats().ActiveWorkers)
	assert.EqualValues(t, maxWorkers, server.Stats().Accepted, "remaining clients wait in the backlog")

	close(h.release)
	waitFor(t, func() bool { return server.Stats().Completed == clients })
	assert.LessOrEqual(t, h.peak.Load(), int64(maxWorkers))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
	assert.Zero(t, server.Stats().ActiveWorkers)
}

func TestStopWaitsForWorkers(t *testing.T) {
	h := &blockingHandler{release: make(chan struct{})}
	server := tcp.NewTCPServer(h, logging.NewNopLogger(), tcp.WithAddress("127.0.0.1:0"))
	require.NoError(t, server.Start(context.Background()))

	conn, err := net.Dial("tcp", server.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	waitFor(t, func() bool { return h.running.Load() == 1 })

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, server.Stop(short), context.DeadlineExceeded)

	_, err = net.DialTimeout("tcp", server.Addr().String(), time.Second)
	assert.Error(t, err, "listener closed")

	close(h.release)
	waitFor(t, func() bool { return server.Stats().ActiveWorkers == 0 })
	assert.NoError(t, server.Stop(context.Background()), "second stop is a no-op")
}

func TestStartTwice(t *testing.T) {
	server, _ := startServer(t, 1)
	assert.Error(t, server.Start(context.Background()))
}

func TestStartAddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	server := tcp.NewTCPServer(nil, logging.NewNopLogger(), tcp.WithAddress(taken.Addr().String()))
	err = server.Start(context.Background())
	assert.ErrorIs(t, err, errs.ErrTransport)
	assert.Equal(t, errs.ExitNetwork, errs.ExitCode(err))
	assert.NoError(t, server.Stop(context.Background()))
}
