// Package store implements services.Repository on gorm (MySQL or PostgreSQL).
package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/services"
)

var _ services.Repository = (*Store)(nil)

// Store wraps a gorm connection.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a Store. db must be opened with TranslateError enabled so
// unique and foreign key violations map to Conflict.
func New(db *gorm.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Storage(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm errors to caller-safe kinds. what names the entity
// in NotFound and Conflict messages.
func (s *Store) translate(err error, what string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.New(apperrors.NotFound, what+" not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Wrap(apperrors.Conflict, what+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Wrap(apperrors.Conflict, what+" is still referenced", err)
	}

	s.log.Error("database error", zap.String("entity", what), zap.Error(err))
	return apperrors.Storage(err)
}
