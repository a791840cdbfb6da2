package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User, profile *models.DoctorProfile) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.New(apperrors.Conflict, "email already in use")
			}
			return err
		}
		if profile == nil {
			return nil
		}
		profile.UserID = user.ID
		return tx.Omit(clause.Associations).Create(profile).Error
	})
	return s.translate(err, "user")
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, s.translate(err, "user")
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.conn(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, s.translate(err, "user")
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.conn(ctx).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, s.translate(err, "user")
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	err := s.conn(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":       user.Name,
		"email":      user.Email,
		"role":       user.Role,
		"updated_at": user.UpdatedAt,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.New(apperrors.Conflict, "email already in use")
	}
	return s.translate(err, "user")
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&models.Appointment{}).
			Where("patient_id = ? OR doctor_id = ?", id, id).
			Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.New(apperrors.Conflict, "user has appointments")
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}

		var profile models.DoctorProfile
		err := tx.First(&profile, "user_id = ?", id).Error
		switch {
		case err == nil:
			if err := tx.Where("doctor_profile_id = ?", profile.ID).Delete(&models.Availability{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&profile).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return tx.Delete(&user).Error
	})
	return s.translate(err, "user")
}
