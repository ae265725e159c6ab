// Package handshake implements the identity token exchange that precedes every session.
//
// The exchange is a protocol convention that keeps unrelated clients away from the
// service. It is not an authentication mechanism: the identity token is a fixed public
// string and nothing is signed or encrypted.
package handshake

import (
	"fmt"

	"gitlab.com/otp-enc.net/internal/tcp/defs"
	"gitlab.com/otp-enc.net/internal/tcp/transport"
)

// Result is the server-side outcome of a handshake.
type Result int

const (
	Rejected Result = iota
	Verified
)

func (r Result) String() string {
	if r == Verified {
		return "verified"
	}
	return "rejected"
}

// Verify receives the client's identity frame and answers ACCEPT or REJECT.
// Only an exact match of the identity token is verified.
func Verify(f *transport.Framer) (Result, error) {
	identity, err := f.RecvFramed()
	if err != nil {
		return Rejected, fmt.Errorf("failed to receive client identity: %w", err)
	}

	result, reply := Rejected, defs.RejectToken
	if string(identity) == defs.ClientIdentity {
		result, reply = Verified, defs.AcceptToken
	}

	if err := f.SendFramed([]byte(reply)); err != nil {
		return Rejected, fmt.Errorf("failed to send handshake reply: %w", err)
	}
	return result, nil
}

// Request sends the client identity and reports whether the server accepted it.
func Request(f *transport.Framer) (bool, error) {
	return RequestAs(f, defs.ClientIdentity)
}

// RequestAs is Request with an explicit identity token.
func RequestAs(f *transport.Framer, identity string) (bool, error) {
	if err := f.SendFramed([]byte(identity)); err != nil {
		return false, fmt.Errorf("failed to send client identity: %w", err)
	}

	status, err := f.RecvFramed()
	if err != nil {
		return false, fmt.Errorf("failed to receive handshake reply: %w", err)
	}
	return string(status) == defs.AcceptToken, nil
}
