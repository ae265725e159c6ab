package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/otp-enc.net/internal/domain"
)

type SessionRepository interface {
	// SaveSession stores a finished session record
	SaveSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by ID, nil if unknown or expired
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// RecentSessions returns up to limit sessions, newest first
	RecentSessions(ctx context.Context, limit int) ([]*domain.Session, error)
}
