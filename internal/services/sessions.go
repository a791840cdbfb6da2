package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

type sessionBackend interface {
	SessionRepository
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// SessionStore issues, resolves and destroys opaque session tokens.
type SessionStore struct {
	base
	repo sessionBackend
	ttl  time.Duration
}

// Create issues a new token for userID, valid for the configured TTL.
func (s *SessionStore) Create(ctx context.Context, userID string) (*models.Session, error) {
	now := s.now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, s.fail("session.create", err)
	}
	return session, nil
}

// Resolve returns the user bound to token. Absent, unknown and expired
// tokens fail with Unauthenticated; an expired record is deleted on the way.
func (s *SessionStore) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}

	session, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.New(apperrors.Unauthenticated, "invalid session")
	}
	if err != nil {
		return nil, s.fail("session.resolve", err)
	}

	if session.Expired(s.now()) {
		s.discard(ctx, token)
		return nil, apperrors.New(apperrors.Unauthenticated, "session expired")
	}

	user, err := s.repo.GetUser(ctx, session.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.discard(ctx, token)
		return nil, apperrors.New(apperrors.Unauthenticated, "invalid session")
	}
	if err != nil {
		return nil, s.fail("session.resolve", err)
	}
	return user, nil
}

// Destroy deletes the session. Unknown tokens are not an error.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return s.fail("session.destroy", err)
	}
	return nil
}

// discard removes a stale session. The caller is denied either way.
func (s *SessionStore) discard(ctx context.Context, token string) {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		s.log.Warn("failed to delete stale session", zap.Error(err))
	}
}
