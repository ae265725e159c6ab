package handlers

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/core/services/cipher"
	"gitlab.com/otp-enc.net/internal/domain"
	"gitlab.com/otp-enc.net/internal/static/errs"
	"gitlab.com/otp-enc.net/internal/tcp/handshake"
	"gitlab.com/otp-enc.net/internal/tcp/transport"
)

var _ primary.ConnectionHandler = (*SessionHandler)(nil)

// SessionHandler is the body of one daemon worker: handshake, then plaintext and key in,
// ciphertext out.
type SessionHandler struct {
	CipherService  cipher.ICipherService
	SessionRepo    secondary.SessionRepository
	Logger         primary.Logger
	MaxMessageSize uint32
	IOTimeout      time.Duration
}

func NewSessionHandler(
	cipherService cipher.ICipherService,
	sessionRepo secondary.SessionRepository,
	logger primary.Logger,
	maxMessageSize uint32,
	ioTimeout time.Duration,
) *SessionHandler {
	return &SessionHandler{
		CipherService:  cipherService,
		SessionRepo:    sessionRepo,
		Logger:         logger,
		MaxMessageSize: maxMessageSize,
		IOTimeout:      ioTimeout,
	}
}

// HandleConnection implements the ConnectionHandler interface.
// A rejected client yields errs.ErrHandshakeRejected after the REJECT reply has been sent.
func (h *SessionHandler) HandleConnection(ctx context.Context, conn net.Conn, sessionID uuid.UUID) error {
	session := domain.NewSession(sessionID, conn.RemoteAddr().String())
	framer := transport.NewFramer(conn,
		transport.WithMaxMessageSize(h.MaxMessageSize),
		transport.WithIOTimeout(h.IOTimeout),
		transport.WithLogger(h.Logger, sessionID.String()),
	)

	err := h.serve(framer, session)
	switch {
	case err == nil:
		session.Finish(domain.SessionStatusCompleted, nil)
		h.Logger.Info("Session completed",
			"sessionId", sessionID, "plaintextLen", session.PlaintextLen, "duration", session.Duration())
	case session.Status == domain.SessionStatusRejected:
		session.Finish(domain.SessionStatusRejected, nil)
		h.Logger.Info("Client rejected", "sessionId", sessionID, "remote", session.RemoteAddr)
	default:
		session.Finish(domain.SessionStatusFailed, err)
		h.Logger.Error("Session failed", "sessionId", sessionID, "remote", session.RemoteAddr, "error", err)
	}

	if h.SessionRepo != nil {
		if saveErr := h.SessionRepo.SaveSession(ctx, session); saveErr != nil {
			h.Logger.Warn("Failed to record session", "sessionId", sessionID, "error", saveErr)
		}
	}
	return err
}

func (h *SessionHandler) serve(framer *transport.Framer, session *domain.Session) error {
	result, err := handshake.Verify(framer)
	if err != nil {
		return err
	}
	if result == handshake.Rejected {
		session.Status = domain.SessionStatusRejected
		return errs.ErrHandshakeRejected
	}

	plaintext, err := framer.RecvWithAck()
	if err != nil {
		return fmt.Errorf("failed to receive plaintext: %w", err)
	}
	session.PlaintextLen = len(plaintext)

	key, err := framer.RecvWithAck()
	if err != nil {
		return fmt.Errorf("failed to receive key: %w", err)
	}

	ciphertext, err := h.CipherService.Encrypt(plaintext, key)
	if err != nil {
		return err
	}

	if err := framer.SendWithAck(ciphertext); err != nil {
		return fmt.Errorf("failed to send ciphertext: %w", err)
	}
	return nil
}
