package errs

import (
	"errors"
	"fmt"
)

// Error classes. Every error produced by the protocol core wraps exactly one of these.
var (
	ErrUsage             = errors.New("usage error")
	ErrValidation        = errors.New("validation error")
	ErrHandshakeRejected = errors.New("handshake rejected")
	ErrTransport         = errors.New("transport error")
)

// Validation errors
var (
	ErrInvalidSymbol = fmt.Errorf("%w: symbol outside the 27-symbol alphabet", ErrValidation)
	ErrKeyTooShort   = fmt.Errorf("%w: key is shorter than plaintext", ErrValidation)
)

// Transport errors
var (
	ErrConnectFailed    = fmt.Errorf("%w: connection failed", ErrTransport)
	ErrConnectionClosed = fmt.Errorf("%w: connection closed by peer", ErrTransport)
	ErrFrameTruncated   = fmt.Errorf("%w: frame truncated", ErrTransport)
	ErrFrameTooLarge    = fmt.Errorf("%w: frame exceeds maximum message size", ErrTransport)
	ErrShortWrite       = fmt.Errorf("%w: short write", ErrTransport)
	ErrAckMismatch      = fmt.Errorf("%w: did not receive ACK when expected", ErrTransport)
)
