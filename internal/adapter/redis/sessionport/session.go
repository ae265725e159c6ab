package sessionport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/otp-enc.net/internal/core/ports/primary"
	"gitlab.com/otp-enc.net/internal/core/ports/secondary"
	"gitlab.com/otp-enc.net/internal/domain"
)

const (
	sessionKeyPrefix     = "session:"
	sessionsByTimeKey    = "sessions:by_time"
	DefaultSessionExpiry = time.Hour
)

var _ secondary.SessionRepository = (*SessionRepository)(nil)

// SessionRepository implements the SessionRepository interface with Redis
type SessionRepository struct {
	redisClient redis.UniversalClient
	logger      primary.Logger
	expiration  time.Duration
}

// NewSessionRepository creates a new Redis session repository
func NewSessionRepository(redisClient redis.UniversalClient, logger primary.Logger, expiration time.Duration) *SessionRepository {
	if expiration <= 0 {
		expiration = DefaultSessionExpiry
	}
	return &SessionRepository{
		redisClient: redisClient,
		logger:      logger,
		expiration:  expiration,
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, id)
}

// SaveSession saves a session record with expiration and indexes it by finish time
func (r *SessionRepository) SaveSession(ctx context.Context, session *domain.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		r.logger.Error("Failed to marshal session", "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	finished := session.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err = r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), sessionJSON, r.expiration)
		pipe.ZAdd(ctx, sessionsByTimeKey, &redis.Z{
			Score:  float64(finished.UnixNano()),
			Member: session.ID.String(),
		})
		// the index never outlives the records it points to by more than one expiry
		pipe.ZRemRangeByScore(ctx, sessionsByTimeKey, "-inf",
			fmt.Sprintf("%d", finished.Add(-r.expiration).UnixNano()))
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save session", "sessionId", session.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session from Redis by ID
func (r *SessionRepository) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sessionJSON, err := r.redisClient.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to get session", "sessionId", id, "error", err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(sessionJSON, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// RecentSessions reads the newest entries of the time index and loads them with MGET
func (r *SessionRepository) RecentSessions(ctx context.Context, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	ids, err := r.redisClient.ZRevRange(ctx, sessionsByTimeKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKeyPrefix + id
	}
	values, err := r.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(values))
	for _, data := range values {
		// expired between ZREVRANGE and MGET
		if data == nil {
			continue
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(data.(string)), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}
