package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

// BookAppointment consumes the slot with a guarded update and inserts the
// appointment in the same transaction. Of two concurrent bookings the second
// blocks on the slot row, then matches zero rows and fails.
func (s *Store) BookAppointment(ctx context.Context, appt *models.Appointment) error {
	if appt.AvailabilityID == nil {
		return apperrors.New(apperrors.InvalidInput, "availability is required")
	}
	slotID := *appt.AvailabilityID

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Availability{}).
			Where("id = ? AND is_booked = ?", slotID, false).
			Updates(map[string]interface{}{"is_booked": true, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Availability{}).Where("id = ?", slotID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return apperrors.New(apperrors.NotFound, "availability not found")
			}
			return apperrors.New(apperrors.SlotUnavailable, "slot is no longer available")
		}

		return tx.Omit(clause.Associations).Create(appt).Error
	})
	return s.translate(err, "appointment")
}

func (s *Store) preloaded(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("Patient").
		Preload("Doctor").
		Preload("DoctorProfile.User").
		Preload("HealthPackage")
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.preloaded(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, s.translate(err, "appointment")
	}
	return &appt, nil
}

func (s *Store) ListAppointments(ctx context.Context, filter services.AppointmentFilter) ([]models.Appointment, error) {
	query := s.preloaded(ctx).Order("date asc").Order("start_time asc")
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorProfileID != "" {
		query = query.Where("doctor_profile_id = ?", filter.DoctorProfileID)
	}

	appts := []models.Appointment{}
	if err := query.Find(&appts).Error; err != nil {
		return nil, s.translate(err, "appointment")
	}
	return appts, nil
}

// TransitionAppointment is a compare-and-set on status. A lost race shows
// up as zero affected rows and is reported as InvalidTransition.
func (s *Store) TransitionAppointment(ctx context.Context, id string, from, to models.AppointmentStatus, releaseSlot bool) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": to, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var appt models.Appointment
			if err := tx.Select("id").First(&appt, "id = ?", id).Error; err != nil {
				return err
			}
			return apperrors.New(apperrors.InvalidTransition, "appointment status changed concurrently")
		}

		if !releaseSlot {
			return nil
		}
		var appt models.Appointment
		if err := tx.Select("id", "availability_id").First(&appt, "id = ?", id).Error; err != nil {
			return err
		}
		if appt.AvailabilityID == nil {
			return nil
		}
		return tx.Model(&models.Availability{}).
			Where("id = ?", *appt.AvailabilityID).
			Update("is_booked", false).Error
	})
	return s.translate(err, "appointment")
}
