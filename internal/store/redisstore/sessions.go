// Package redisstore keeps sessions in Redis instead of the SQL database.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

// DefaultPrefix namespaces session keys.
const DefaultPrefix = "clinic:session"

// retention keeps a record around after it expires so the session store,
// not Redis, is the one that decides a token is expired and deletes it.
const retention = time.Hour

var _ services.SessionRepository = (*SessionStore)(nil)

// SessionStore implements services.SessionRepository on Redis.
type SessionStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewSessionStore creates a SessionStore. An empty prefix uses DefaultPrefix.
func NewSessionStore(rdb redis.UniversalClient, prefix string) *SessionStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionStore{redis: rdb, prefix: prefix}
}

type record struct {
	UserID    string    `json:"u"`
	ExpiresAt time.Time `json:"e"`
	CreatedAt time.Time `json:"c"`
}

func (s *SessionStore) key(token string) string {
	return s.prefix + ":" + token
}

func (s *SessionStore) CreateSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(record{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return apperrors.Storage(err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl < 0 {
		ttl = 0
	}

	created, err := s.redis.SetNX(ctx, s.key(session.Token), data, ttl+retention).Result()
	if err != nil {
		return apperrors.Storage(err)
	}
	if !created {
		return apperrors.New(apperrors.Conflict, "session already exists")
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.New(apperrors.NotFound, "session not found")
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.Storage(err)
	}
	return &models.Session{
		Token:     token,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}, nil
}

// DeleteSession is idempotent.
func (s *SessionStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// withSessions routes session calls to Redis and everything else to the
// wrapped repository.
type withSessions struct {
	services.Repository
	sessions *SessionStore
}

// Overlay returns repo with its session methods served by sessions.
func Overlay(repo services.Repository, sessions *SessionStore) services.Repository {
	return &withSessions{Repository: repo, sessions: sessions}
}

func (w *withSessions) CreateSession(ctx context.Context, session *models.Session) error {
	return w.sessions.CreateSession(ctx, session)
}

func (w *withSessions) GetSession(ctx context.Context, token string) (*models.Session, error) {
	return w.sessions.GetSession(ctx, token)
}

func (w *withSessions) DeleteSession(ctx context.Context, token string) error {
	return w.sessions.DeleteSession(ctx, token)
}
