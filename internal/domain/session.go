package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRejected  SessionStatus = "rejected"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// Session describes one serviced connection. It never carries plaintext, key or ciphertext.
type Session struct {
	ID           uuid.UUID     `json:"id"`
	RemoteAddr   string        `json:"remote_addr"`
	Status       SessionStatus `json:"status"`
	PlaintextLen int           `json:"plaintext_len"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Error        string        `json:"error,omitempty"`
}

func NewSession(id uuid.UUID, remoteAddr string) *Session {
	return &Session{
		ID:         id,
		RemoteAddr: remoteAddr,
		Status:     SessionStatusPending,
		StartedAt:  time.Now(),
	}
}

// Finish stamps the session with its final status. A non-nil err is kept as text.
func (s *Session) Finish(status SessionStatus, err error) {
	s.Status = status
	s.FinishedAt = time.Now()
	if err != nil {
		s.Error = err.Error()
	}
}

// Duration is zero until the session has finished.
func (s *Session) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
