package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"gitlab.com/otp-enc.net/internal/adapter/logging"
	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/defs"
	"gitlab.com/otp-enc.net/internal/tcp/handshake"
	"gitlab.com/otp-enc.net/internal/tcp/transport"
)

// Client drives a single encryption request against the daemon. It is sequential and
// never retries.
type Client struct {
	address        string
	identity       string
	ioTimeout      time.Duration
	maxMessageSize uint32
	logger         primary.Logger
	dialer         net.Dialer
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithAddress sets the daemon address (host:port)
func WithAddress(address string) ClientOption {
	return func(c *Client) {
		c.address = address
	}
}

// WithIdentity overrides the identity token sent in the handshake
func WithIdentity(identity string) ClientOption {
	return func(c *Client) {
		c.identity = identity
	}
}

// WithIOTimeout bounds every blocking read and write; zero blocks forever
func WithIOTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.ioTimeout = timeout
	}
}

// WithMaxMessageSize caps the frames sent and accepted
func WithMaxMessageSize(size uint32) ClientOption {
	return func(c *Client) {
		c.maxMessageSize = size
	}
}

// WithLogger sets the client logger
func WithLogger(logger primary.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new client
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		address:        fmt.Sprintf("%s:%d", defs.DefaultHost, defs.DefaultPort),
		identity:       defs.ClientIdentity,
		maxMessageSize: defs.DefaultMaxMessageSize,
		logger:         logging.NewNopLogger(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Encrypt sends plaintext and key to the daemon and returns the ciphertext.
// A key shorter than the plaintext fails before any network I/O.
func (c *Client) Encrypt(ctx context.Context, plaintext, key []byte) ([]byte, error) {
	if len(key) < len(plaintext) {
		return nil, fmt.Errorf("%w: key length %d, plaintext length %d", errs.ErrKeyTooShort, len(key), len(plaintext))
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.address)
	if err != nil {
		return nil, fmt.Errorf("%w: can't connect to daemon on %s: %w", errs.ErrConnectFailed, c.address, err)
	}
	defer conn.Close()

	c.logger.Debug("Connected to daemon", "address", c.address)

	framer := transport.NewFramer(conn,
		transport.WithMaxMessageSize(c.maxMessageSize),
		transport.WithIOTimeout(c.ioTimeout),
		transport.WithLogger(c.logger, conn.LocalAddr().String()),
	)

	accepted, err := handshake.RequestAs(framer, c.identity)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("%w: daemon on %s refused client %q", errs.ErrHandshakeRejected, c.address, c.identity)
	}

	if err := framer.SendWithAck(plaintext); err != nil {
		return nil, fmt.Errorf("failed to send plaintext: %w", err)
	}
	if err := framer.SendWithAck(key); err != nil {
		return nil, fmt.Errorf("failed to send key: %w", err)
	}

	ciphertext, err := framer.RecvWithAck()
	if err != nil {
		return nil, fmt.Errorf("failed to receive ciphertext: %w", err)
	}
	return ciphertext, nil
}
