package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

// releasedStatuses no longer hold the slot they were booked from.
var releasedStatuses = []models.AppointmentStatus{models.StatusRejected, models.StatusCanceled}

func (s *Store) CreateAvailability(ctx context.Context, slot *models.Availability) error {
	return s.translate(s.conn(ctx).Omit(clause.Associations).Create(slot).Error, "availability")
}

func (s *Store) GetAvailability(ctx context.Context, id string) (*models.Availability, error) {
	var slot models.Availability
	if err := s.conn(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, s.translate(err, "availability")
	}
	return &slot, nil
}

func (s *Store) ListOpenAvailability(ctx context.Context, doctorProfileID string, from time.Time) ([]models.Availability, error) {
	slots := []models.Availability{}
	err := s.conn(ctx).
		Where("doctor_profile_id = ? AND is_booked = ? AND date >= ?", doctorProfileID, false, from).
		Order("date asc").
		Order("start_time asc").
		Find(&slots).Error
	if err != nil {
		return nil, s.translate(err, "availability")
	}
	return slots, nil
}

// DeleteAvailability locks the slot row first so a concurrent booking either
// commits before the reference check or finds the slot gone.
func (s *Store) DeleteAvailability(ctx context.Context, id string) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.Availability
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&slot, "id = ?", id).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.Appointment{}).
			Where("availability_id = ? AND status NOT IN ?", id, releasedStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperrors.New(apperrors.SlotConsumed, "slot is referenced by an active appointment")
		}

		return tx.Delete(&slot).Error
	})
	return s.translate(err, "availability")
}
