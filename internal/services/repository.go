package services

import (
	"context"
	"time"

	"clinic-booking-server/internal/models"
)

// Repository implementations return *apperrors.Error values: NotFound for
// missing rows, Conflict for uniqueness or reference violations, and
// apperrors.Storage for everything the database reports otherwise.

// UserRepository persists users.
type UserRepository interface {
	// CreateUser inserts the user and, when profile is non-nil, its doctor
	// profile in the same transaction.
	CreateUser(ctx context.Context, user *models.User, profile *models.DoctorProfile) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsers returns users newest first.
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// DeleteUser removes the user with sessions, doctor profile and slots.
	// It fails with Conflict while any appointment references the user.
	DeleteUser(ctx context.Context, id string) error
}

// SessionRepository persists sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	// DeleteSession is idempotent.
	DeleteSession(ctx context.Context, token string) error
}

// DoctorRepository persists doctor profiles. Reads preload the owning user.
type DoctorRepository interface {
	CreateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error
	GetDoctorProfile(ctx context.Context, id string) (*models.DoctorProfile, error)
	GetDoctorProfileByUser(ctx context.Context, userID string) (*models.DoctorProfile, error)
	ListDoctorProfiles(ctx context.Context, approvedOnly bool) ([]models.DoctorProfile, error)
	UpdateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error
	// DeleteDoctorProfile removes the profile and its slots. It fails with
	// Conflict while any appointment references the profile.
	DeleteDoctorProfile(ctx context.Context, id string) error
}

// AvailabilityRepository persists slots.
type AvailabilityRepository interface {
	CreateAvailability(ctx context.Context, slot *models.Availability) error
	GetAvailability(ctx context.Context, id string) (*models.Availability, error)
	// ListOpenAvailability returns unbooked slots dated on or after from,
	// ordered by date then start time.
	ListOpenAvailability(ctx context.Context, doctorProfileID string, from time.Time) ([]models.Availability, error)
	// DeleteAvailability fails with SlotConsumed while an appointment that
	// still holds the slot references it.
	DeleteAvailability(ctx context.Context, id string) error
}

// AppointmentFilter narrows ListAppointments. Empty fields match everything.
type AppointmentFilter struct {
	PatientID       string
	DoctorProfileID string
}

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	// BookAppointment marks appointment.AvailabilityID booked and inserts the
	// appointment as one atomic unit. A slot that is already booked yields
	// SlotUnavailable and nothing is written.
	BookAppointment(ctx context.Context, appointment *models.Appointment) error
	// GetAppointment preloads patient, doctor, doctor profile and package.
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	// ListAppointments orders by date then start time, ascending.
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	// TransitionAppointment sets status to `to` only while it still equals
	// `from`; otherwise InvalidTransition. With releaseSlot the referenced
	// slot is unbooked in the same transaction.
	TransitionAppointment(ctx context.Context, id string, from, to models.AppointmentStatus, releaseSlot bool) error
}

// HealthPackageRepository persists the package catalog.
type HealthPackageRepository interface {
	CreateHealthPackage(ctx context.Context, pkg *models.HealthPackage) error
	GetHealthPackage(ctx context.Context, id string) (*models.HealthPackage, error)
	// ListHealthPackages orders by price ascending.
	ListHealthPackages(ctx context.Context) ([]models.HealthPackage, error)
	UpdateHealthPackage(ctx context.Context, pkg *models.HealthPackage) error
	// DeleteHealthPackage fails with Conflict while appointments reference it.
	DeleteHealthPackage(ctx context.Context, id string) error
}

// Repository is everything the services need from the durable store.
type Repository interface {
	UserRepository
	SessionRepository
	DoctorRepository
	AvailabilityRepository
	AppointmentRepository
	HealthPackageRepository
}
