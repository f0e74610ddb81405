package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayush/student-rating/internal/models"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	SessionCookie     = "session_id"

	sessionPrefix = "session:"
)

// SessionStore wraps Redis for session management. Each session maps a
// random id to the JSON-encoded principal.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create stores a new session for p and returns its id.
func (s *SessionStore) Create(ctx context.Context, p *models.Principal) (string, error) {
	const op = "auth.SessionStore.Create"

	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sid := uuid.New().String()
	if err := s.rdb.Set(ctx, sessionPrefix+sid, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sid, nil
}

// Get returns the principal for a session, or nil if not found / expired.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.Principal, error) {
	const op = "auth.SessionStore.Get"

	val, err := s.rdb.Get(ctx, sessionPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var p models.Principal
	if err := json.Unmarshal(val, &p); err != nil {
		// unreadable entry: drop it and treat the request as anonymous
		s.rdb.Del(ctx, sessionPrefix+sessionID)
		return nil, nil
	}
	return &p, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("auth.SessionStore.Delete: %w", err)
	}
	return nil
}
