package defs

import "time"

// Protocol constants
const (
	// LengthPrefixSize is the width of the big-endian frame length field.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single frame payload (1 MiB).
	DefaultMaxMessageSize uint32 = 1 << 20

	// Handshake tokens
	ClientIdentity = "OTP_ENC"
	AcceptToken    = "ACCEPT"
	RejectToken    = "REJECT"

	// DefaultMaxWorkers is the number of connections serviced at once.
	DefaultMaxWorkers = 5

	// Configuration constants
	DefaultPort          = 5000
	DefaultHost          = "127.0.0.1"
	ConnectionRetryDelay = 1 * time.Second
)

// AckToken confirms receipt of a frame. It is written raw, without a length prefix.
var AckToken = [4]byte{'A', 'C', 'K', 0}
