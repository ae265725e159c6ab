package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/defs"
)

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Framer sends and receives length-prefixed frames over a byte stream.
// It is not safe for concurrent use; one Framer belongs to one session.
type Framer struct {
	rw             io.ReadWriter
	maxMessageSize uint32
	ioTimeout      time.Duration
	logger         primary.Logger
	sessionID      string
	lengthBuf      [defs.LengthPrefixSize]byte
}

// FramerOption configures a Framer
type FramerOption func(*Framer)

// WithMaxMessageSize caps the payload size accepted and sent.
func WithMaxMessageSize(size uint32) FramerOption {
	return func(f *Framer) {
		if size > 0 {
			f.maxMessageSize = size
		}
	}
}

// WithIOTimeout sets a deadline before every blocking operation when the stream supports it.
// Zero means block forever.
func WithIOTimeout(timeout time.Duration) FramerOption {
	return func(f *Framer) {
		f.ioTimeout = timeout
	}
}

// WithLogger enables debug logging of frame sizes.
func WithLogger(logger primary.Logger, sessionID string) FramerOption {
	return func(f *Framer) {
		f.logger = logger
		f.sessionID = sessionID
	}
}

// NewFramer creates a new framer over rw
func NewFramer(rw io.ReadWriter, options ...FramerOption) *Framer {
	f := &Framer{
		rw:             rw,
		maxMessageSize: defs.DefaultMaxMessageSize,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// SendFramed writes the length prefix followed by exactly len(payload) bytes.
func (f *Framer) SendFramed(payload []byte) error {
	if uint64(len(payload)) > uint64(f.maxMessageSize) {
		return fmt.Errorf("%w: %d > %d", errs.ErrFrameTooLarge, len(payload), f.maxMessageSize)
	}
	f.armDeadline()

	binary.BigEndian.PutUint32(f.lengthBuf[:], uint32(len(payload)))
	if err := writeFull(f.rw, f.lengthBuf[:]); err != nil {
		return fmt.Errorf("failed to write length prefix: %w", err)
	}
	if err := writeFull(f.rw, payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	f.debug("frame sent", len(payload))
	return nil
}

// RecvFramed reads one frame, looping over partial reads until the declared length is met.
func (f *Framer) RecvFramed() ([]byte, error) {
	f.armDeadline()

	if _, err := io.ReadFull(f.rw, f.lengthBuf[:]); err != nil {
		return nil, readError("length prefix", err)
	}

	length := binary.BigEndian.Uint32(f.lengthBuf[:])
	if length > f.maxMessageSize {
		return nil, fmt.Errorf("%w: %d > %d", errs.ErrFrameTooLarge, length, f.maxMessageSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(f.rw, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, readError("payload", err)
	}

	f.debug("frame received", int(length))
	return payload, nil
}

// SendWithAck sends a frame and blocks until the peer acknowledges it.
func (f *Framer) SendWithAck(payload []byte) error {
	if err := f.SendFramed(payload); err != nil {
		return err
	}
	return f.recvAck()
}

// RecvWithAck receives a frame and immediately acknowledges it.
func (f *Framer) RecvWithAck() ([]byte, error) {
	payload, err := f.RecvFramed()
	if err != nil {
		return nil, err
	}
	if err := f.sendAck(); err != nil {
		return nil, err
	}
	return payload, nil
}

func (f *Framer) sendAck() error {
	f.armDeadline()
	if err := writeFull(f.rw, defs.AckToken[:]); err != nil {
		return fmt.Errorf("failed to write ack: %w", err)
	}
	return nil
}

func (f *Framer) recvAck() error {
	f.armDeadline()
	var ack [len(defs.AckToken)]byte
	if _, err := io.ReadFull(f.rw, ack[:]); err != nil {
		return readError("ack", err)
	}
	if ack != defs.AckToken {
		return fmt.Errorf("%w: got %q", errs.ErrAckMismatch, ack[:])
	}
	return nil
}

func (f *Framer) armDeadline() {
	if f.ioTimeout <= 0 {
		return
	}
	if d, ok := f.rw.(deadliner); ok {
		_ = d.SetDeadline(time.Now().Add(f.ioTimeout))
	}
}

func (f *Framer) debug(msg string, size int) {
	if f.logger != nil {
		f.logger.Debug(msg, "sessionId", f.sessionID, "size", size)
	}
}

// writeFull loops until p is written; a zero-byte write without error is a short write.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		p = p[n:]
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrTransport, err)
		}
		if n == 0 {
			return errs.ErrShortWrite
		}
	}
	return nil
}

func readError(part string, err error) error {
	switch {
	case errors.Is(err, io.EOF):
		return fmt.Errorf("reading %s: %w", part, errs.ErrConnectionClosed)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("reading %s: %w", part, errs.ErrFrameTruncated)
	default:
		return fmt.Errorf("%w: reading %s: %w", errs.ErrTransport, part, err)
	}
}
