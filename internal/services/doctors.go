package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

// DoctorService manages doctor profiles and their approval.
type DoctorService struct {
	base
	repo   DoctorRepository
	ledger *Ledger
}

// DoctorProfileInput is the editable part of a profile.
type DoctorProfileInput struct {
	Specialty string `json:"specialty" validate:"required,min=2,max=100"`
	Bio       string `json:"bio" validate:"max=2000"`
}

// GetOwnProfile returns the acting doctor's profile.
func (d *DoctorService) GetOwnProfile(ctx context.Context, actor *models.User) (*models.DoctorProfile, error) {
	if err := requireRole(actor, models.RoleDoctor); err != nil {
		return nil, err
	}
	profile, err := d.repo.GetDoctorProfileByUser(ctx, actor.ID)
	if err != nil {
		return nil, d.fail("doctor.own", err)
	}
	return profile, nil
}

// CreateOwnProfile creates an unapproved profile for a doctor who has none.
func (d *DoctorService) CreateOwnProfile(ctx context.Context, actor *models.User, in DoctorProfileInput) (*models.DoctorProfile, error) {
	if err := requireRole(actor, models.RoleDoctor); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	_, err := d.repo.GetDoctorProfileByUser(ctx, actor.ID)
	if err == nil {
		return nil, apperrors.New(apperrors.Conflict, "doctor profile already exists")
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, d.fail("doctor.create", err)
	}

	profile := &models.DoctorProfile{
		UserID:    actor.ID,
		Specialty: strings.TrimSpace(in.Specialty),
		Bio:       in.Bio,
	}
	if err := d.repo.CreateDoctorProfile(ctx, profile); err != nil {
		return nil, d.fail("doctor.create", err)
	}
	return d.repo.GetDoctorProfile(ctx, profile.ID)
}

// UpdateOwnProfile edits specialty and bio. Approval is left untouched.
func (d *DoctorService) UpdateOwnProfile(ctx context.Context, actor *models.User, in DoctorProfileInput) (*models.DoctorProfile, error) {
	profile, err := d.GetOwnProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	profile.Specialty = strings.TrimSpace(in.Specialty)
	profile.Bio = in.Bio
	if err := d.repo.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, d.fail("doctor.update", err)
	}
	return profile, nil
}

// ListApproved returns the doctors patients may book.
func (d *DoctorService) ListApproved(ctx context.Context) ([]models.DoctorProfile, error) {
	profiles, err := d.repo.ListDoctorProfiles(ctx, true)
	if err != nil {
		return nil, d.fail("doctor.list", err)
	}
	return profiles, nil
}

// GetApproved returns an approved doctor with open slots from today.
// Unapproved doctors are reported as not found.
func (d *DoctorService) GetApproved(ctx context.Context, id string) (*models.DoctorProfile, error) {
	profile, err := d.repo.GetDoctorProfile(ctx, id)
	if err != nil {
		return nil, d.fail("doctor.get", err)
	}
	if !profile.IsApproved {
		return nil, apperrors.New(apperrors.NotFound, "doctor not found")
	}

	slots, err := d.ledger.ListOpenSlots(ctx, profile.ID, d.today())
	if err != nil {
		return nil, err
	}
	profile.Availabilities = slots
	return profile, nil
}

// ListAll returns every profile, approved or not. Admin only.
func (d *DoctorService) ListAll(ctx context.Context, actor *models.User) ([]models.DoctorProfile, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	profiles, err := d.repo.ListDoctorProfiles(ctx, false)
	if err != nil {
		return nil, d.fail("doctor.list_all", err)
	}
	return profiles, nil
}

// Approve makes a doctor visible to patients. Admin only.
func (d *DoctorService) Approve(ctx context.Context, actor *models.User, id string) (*models.DoctorProfile, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := d.repo.GetDoctorProfile(ctx, id)
	if err != nil {
		return nil, d.fail("doctor.approve", err)
	}
	profile.IsApproved = true
	if err := d.repo.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, d.fail("doctor.approve", err)
	}
	d.log.Info("doctor approved", zap.String("profile_id", id), zap.String("admin_id", actor.ID))
	return profile, nil
}

// Reject deletes a profile and its slots. Admin only. Profiles with
// appointments cannot be rejected.
func (d *DoctorService) Reject(ctx context.Context, actor *models.User, id string) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	if err := d.repo.DeleteDoctorProfile(ctx, id); err != nil {
		return d.fail("doctor.reject", err)
	}
	d.log.Info("doctor rejected", zap.String("profile_id", id), zap.String("admin_id", actor.ID))
	return nil
}
