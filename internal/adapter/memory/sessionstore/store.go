package sessionstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/domain"
)

const DefaultCapacity = 256

var _ secondary.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps the most recent sessions in a fixed-size ring.
type SessionStore struct {
	mu       sync.RWMutex
	ring     []*domain.Session
	next     int
	full     bool
	capacity int
}

func NewSessionStore(capacity int) *SessionStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &SessionStore{
		ring:     make([]*domain.Session, capacity),
		capacity: capacity,
	}
}

func (s *SessionStore) SaveSession(_ context.Context, session *domain.Session) error {
	cp := *session

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = &cp
	s.next = (s.next + 1) % s.capacity
	if s.next == 0 {
		s.full = true
	}
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.ring {
		if session != nil && session.ID == id {
			cp := *session
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *SessionStore) RecentSessions(_ context.Context, limit int) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	size := s.next
	if s.full {
		size = s.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	sessions := make([]*domain.Session, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		cp := *s.ring[idx]
		sessions = append(sessions, &cp)
	}
	return sessions, nil
}
