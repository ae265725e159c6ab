package primary

import (
	"context"
	"net"

	"github.com/google/uuid"
)

// ConnectionHandler services one accepted connection end to end.
// The caller owns closing conn once HandleConnection returns.
type ConnectionHandler interface {
	HandleConnection(ctx context.Context, conn net.Conn, sessionID uuid.UUID) error
}
