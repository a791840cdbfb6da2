package store

import (
	"context"

	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/models"
)

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	return s.translate(s.conn(ctx).Omit(clause.Associations).Create(session).Error, "session")
}

func (s *Store) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	if err := s.conn(ctx).First(&session, "token = ?", token).Error; err != nil {
		return nil, s.translate(err, "session")
	}
	return &session, nil
}

// DeleteSession is idempotent: deleting zero rows is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	return s.translate(s.conn(ctx).Where("token = ?", token).Delete(&models.Session{}).Error, "session")
}
