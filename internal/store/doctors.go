package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

func (s *Store) CreateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error {
	return s.translate(s.conn(ctx).Omit(clause.Associations).Create(profile).Error, "doctor profile")
}

func (s *Store) GetDoctorProfile(ctx context.Context, id string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := s.conn(ctx).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		return nil, s.translate(err, "doctor profile")
	}
	return &profile, nil
}

func (s *Store) GetDoctorProfileByUser(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := s.conn(ctx).Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, s.translate(err, "doctor profile")
	}
	return &profile, nil
}

func (s *Store) ListDoctorProfiles(ctx context.Context, approvedOnly bool) ([]models.DoctorProfile, error) {
	query := s.conn(ctx).Preload("User").Order("created_at asc")
	if approvedOnly {
		query = query.Where("is_approved = ?", true)
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, s.translate(err, "doctor profile")
	}
	return profiles, nil
}

func (s *Store) UpdateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	err := s.conn(ctx).Model(&models.DoctorProfile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"specialty":   profile.Specialty,
		"bio":         profile.Bio,
		"is_approved": profile.IsApproved,
		"updated_at":  profile.UpdatedAt,
	}).Error
	return s.translate(err, "doctor profile")
}

func (s *Store) DeleteDoctorProfile(ctx context.Context, id string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.DoctorProfile
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&models.Appointment{}).Where("doctor_profile_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.New(apperrors.Conflict, "doctor profile has appointments")
		}

		if err := tx.Where("doctor_profile_id = ?", id).Delete(&models.Availability{}).Error; err != nil {
			return err
		}
		return tx.Delete(&profile).Error
	})
	return s.translate(err, "doctor profile")
}
