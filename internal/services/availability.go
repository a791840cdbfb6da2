package services

import (
	"context"
	"time"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

type ledgerBackend interface {
	AvailabilityRepository
	GetDoctorProfile(ctx context.Context, id string) (*models.DoctorProfile, error)
}

// Ledger manages each doctor's open slots. Consumption happens only inside
// AppointmentRepository.BookAppointment.
type Ledger struct {
	base
	repo ledgerBackend
}

// ListOpenSlots returns the doctor's unbooked slots dated on or after from,
// ordered by date then start time.
func (l *Ledger) ListOpenSlots(ctx context.Context, doctorProfileID string, from time.Time) ([]models.Availability, error) {
	slots, err := l.repo.ListOpenAvailability(ctx, doctorProfileID, models.DateOnly(from))
	if err != nil {
		return nil, l.fail("ledger.list", err)
	}
	return slots, nil
}

// ListBookableSlots is the patient-facing listing: the doctor must be
// approved and nothing before today is returned.
func (l *Ledger) ListBookableSlots(ctx context.Context, doctorProfileID string, from time.Time) ([]models.Availability, error) {
	profile, err := l.repo.GetDoctorProfile(ctx, doctorProfileID)
	if err != nil {
		return nil, l.fail("ledger.bookable", err)
	}
	if !profile.IsApproved {
		return nil, apperrors.New(apperrors.NotFound, "doctor not found")
	}
	if today := l.today(); from.Before(today) {
		from = today
	}
	return l.ListOpenSlots(ctx, doctorProfileID, from)
}

// AddSlot creates an open slot for the profile. The profile's doctor and
// admins may add slots. Overlapping slots are allowed.
func (l *Ledger) AddSlot(ctx context.Context, actor *models.User, doctorProfileID string, date, start, end time.Time) (*models.Availability, error) {
	profile, err := l.repo.GetDoctorProfile(ctx, doctorProfileID)
	if err != nil {
		return nil, l.fail("ledger.add", err)
	}
	if err := canManageSlots(actor, profile); err != nil {
		return nil, err
	}

	slot := &models.Availability{
		DoctorProfileID: profile.ID,
		Date:            models.DateOnly(date),
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
	}
	if !slot.ValidRange() {
		return nil, apperrors.New(apperrors.InvalidRange, "start time must be before end time")
	}

	if err := l.repo.CreateAvailability(ctx, slot); err != nil {
		return nil, l.fail("ledger.add", err)
	}
	return slot, nil
}

// RemoveSlot deletes a slot unless an active appointment still holds it.
func (l *Ledger) RemoveSlot(ctx context.Context, actor *models.User, id string) error {
	slot, err := l.repo.GetAvailability(ctx, id)
	if err != nil {
		return l.fail("ledger.remove", err)
	}
	profile, err := l.repo.GetDoctorProfile(ctx, slot.DoctorProfileID)
	if err != nil {
		return l.fail("ledger.remove", err)
	}
	if err := canManageSlots(actor, profile); err != nil {
		return err
	}

	if err := l.repo.DeleteAvailability(ctx, id); err != nil {
		return l.fail("ledger.remove", err)
	}
	return nil
}

func canManageSlots(actor *models.User, profile *models.DoctorProfile) error {
	if err := requireRole(actor, models.RoleDoctor, models.RoleAdmin); err != nil {
		return err
	}
	if actor.Role == models.RoleDoctor && profile.UserID != actor.ID {
		return apperrors.New(apperrors.Forbidden, "slot belongs to another doctor")
	}
	return nil
}
