package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
)

type engineBackend interface {
	AppointmentRepository
	GetAvailability(ctx context.Context, id string) (*models.Availability, error)
	GetDoctorProfile(ctx context.Context, id string) (*models.DoctorProfile, error)
	GetDoctorProfileByUser(ctx context.Context, userID string) (*models.DoctorProfile, error)
	GetHealthPackage(ctx context.Context, id string) (*models.HealthPackage, error)
}

// Transitions is the appointment state machine. Statuses absent from the
// map are terminal.
var Transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected, models.StatusCanceled},
	models.StatusApproved: {models.StatusCompleted, models.StatusCanceled},
}

// CanTransition reports whether from -> to is a single legal step.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// actionTargets maps each transition action to the status it produces.
var actionTargets = map[Action]models.AppointmentStatus{
	ActionApprove:  models.StatusApproved,
	ActionReject:   models.StatusRejected,
	ActionCancel:   models.StatusCanceled,
	ActionComplete: models.StatusCompleted,
}

// Engine runs booking and the role-gated status transitions.
type Engine struct {
	base
	repo        engineBackend
	releaseSlot bool
}

// BookRequest is the payload of a booking.
type BookRequest struct {
	DoctorProfileID string  `json:"doctorProfileId" validate:"required"`
	AvailabilityID  string  `json:"availabilityId" validate:"required"`
	HealthPackageID *string `json:"healthPackageId"`
	Notes           string  `json:"notes" validate:"max=1000"`
}

// Book consumes the slot and creates a PENDING appointment in one atomic
// unit. Losing a race for the slot yields SlotUnavailable.
func (e *Engine) Book(ctx context.Context, actor *models.User, req BookRequest) (*models.Appointment, error) {
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}
	if !Allowed(actor, ActionBook, nil) {
		return nil, apperrors.New(apperrors.Forbidden, "only patients can book appointments")
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	slot, err := e.repo.GetAvailability(ctx, req.AvailabilityID)
	if err != nil {
		return nil, e.fail("appointment.book", err)
	}
	if slot.DoctorProfileID != req.DoctorProfileID {
		return nil, apperrors.New(apperrors.NotFound, "availability not found for this doctor")
	}

	profile, err := e.repo.GetDoctorProfile(ctx, req.DoctorProfileID)
	if err != nil {
		return nil, e.fail("appointment.book", err)
	}
	if !profile.IsApproved {
		return nil, apperrors.New(apperrors.NotFound, "doctor not found")
	}

	if slot.IsBooked {
		return nil, apperrors.New(apperrors.SlotUnavailable, "slot is no longer available")
	}
	if slot.Date.Before(e.today()) {
		return nil, apperrors.New(apperrors.SlotUnavailable, "slot is in the past")
	}

	if req.HealthPackageID != nil && *req.HealthPackageID != "" {
		if _, err := e.repo.GetHealthPackage(ctx, *req.HealthPackageID); err != nil {
			return nil, e.fail("appointment.book", err)
		}
	} else {
		req.HealthPackageID = nil
	}

	slotID := slot.ID
	appt := &models.Appointment{
		PatientID:       actor.ID,
		DoctorID:        profile.UserID,
		DoctorProfileID: profile.ID,
		AvailabilityID:  &slotID,
		HealthPackageID: req.HealthPackageID,
		Date:            slot.Date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Status:          models.StatusPending,
		Notes:           req.Notes,
	}
	if err := e.repo.BookAppointment(ctx, appt); err != nil {
		return nil, e.fail("appointment.book", err)
	}

	return e.reload(ctx, appt.ID)
}

// Approve moves a PENDING appointment to APPROVED. Doctor or admin.
func (e *Engine) Approve(ctx context.Context, actor *models.User, id string) (*models.Appointment, error) {
	return e.transition(ctx, actor, id, ActionApprove)
}

// Reject moves a PENDING appointment to REJECTED. Doctor or admin.
func (e *Engine) Reject(ctx context.Context, actor *models.User, id string) (*models.Appointment, error) {
	return e.transition(ctx, actor, id, ActionReject)
}

// Cancel moves a PENDING or APPROVED appointment to CANCELED. Patient,
// doctor or admin.
func (e *Engine) Cancel(ctx context.Context, actor *models.User, id string) (*models.Appointment, error) {
	return e.transition(ctx, actor, id, ActionCancel)
}

// Complete moves an APPROVED appointment to COMPLETED. Doctor or admin.
func (e *Engine) Complete(ctx context.Context, actor *models.User, id string) (*models.Appointment, error) {
	return e.transition(ctx, actor, id, ActionComplete)
}

func (e *Engine) transition(ctx context.Context, actor *models.User, id string, action Action) (*models.Appointment, error) {
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}

	appt, err := e.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, e.fail("appointment."+string(action), err)
	}
	if !Allowed(actor, action, appt) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to "+string(action)+" this appointment")
	}

	to := actionTargets[action]
	if !CanTransition(appt.Status, to) {
		return nil, apperrors.New(apperrors.InvalidTransition,
			"cannot move appointment from "+string(appt.Status)+" to "+string(to))
	}

	release := e.releaseSlot && !to.HoldsSlot()
	if err := e.repo.TransitionAppointment(ctx, appt.ID, appt.Status, to, release); err != nil {
		return nil, e.fail("appointment."+string(action), err)
	}

	return e.reload(ctx, appt.ID)
}

// Get returns one appointment to its patient, its doctor or an admin.
func (e *Engine) Get(ctx context.Context, actor *models.User, id string) (*models.Appointment, error) {
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}
	appt, err := e.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, e.fail("appointment.get", err)
	}
	if !Allowed(actor, ActionView, appt) {
		return nil, apperrors.New(apperrors.Forbidden, "not allowed to view this appointment")
	}
	return appt, nil
}

// ListForActor returns the appointments visible to actor, partitioned.
// Patients see their own, doctors those of their profile, admins all.
func (e *Engine) ListForActor(ctx context.Context, actor *models.User) (*Partitioned, error) {
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "authentication required")
	}

	var filter AppointmentFilter
	switch actor.Role {
	case models.RolePatient:
		filter.PatientID = actor.ID
	case models.RoleDoctor:
		profile, err := e.repo.GetDoctorProfileByUser(ctx, actor.ID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return Partition(nil, e.today()), nil
		}
		if err != nil {
			return nil, e.fail("appointment.list", err)
		}
		filter.DoctorProfileID = profile.ID
	case models.RoleAdmin:
	default:
		return nil, apperrors.New(apperrors.Forbidden, "unknown role")
	}

	appts, err := e.repo.ListAppointments(ctx, filter)
	if err != nil {
		return nil, e.fail("appointment.list", err)
	}
	return Partition(appts, e.today()), nil
}

// ListAll returns every appointment by date. Admin only.
func (e *Engine) ListAll(ctx context.Context, actor *models.User) ([]models.Appointment, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	appts, err := e.repo.ListAppointments(ctx, AppointmentFilter{})
	if err != nil {
		return nil, e.fail("appointment.list", err)
	}
	return appts, nil
}

func (e *Engine) reload(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := e.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, e.fail("appointment.reload", err)
	}
	return appt, nil
}

// Partitioned is the display grouping of a set of appointments.
type Partitioned struct {
	Pending  []models.Appointment `json:"pending"`
	Upcoming []models.Appointment `json:"upcoming"`
	Past     []models.Appointment `json:"past"`
}

// Partition splits appts relative to today: PENDING goes to Pending,
// APPROVED dated today or later to Upcoming, everything else to Past.
// Pending and Upcoming are ordered soonest first, Past most recent first.
func Partition(appts []models.Appointment, today time.Time) *Partitioned {
	today = models.DateOnly(today)
	p := &Partitioned{
		Pending:  []models.Appointment{},
		Upcoming: []models.Appointment{},
		Past:     []models.Appointment{},
	}

	for _, a := range appts {
		switch {
		case a.Status == models.StatusPending:
			p.Pending = append(p.Pending, a)
		case a.Status == models.StatusApproved && !models.DateOnly(a.Date).Before(today):
			p.Upcoming = append(p.Upcoming, a)
		default:
			p.Past = append(p.Past, a)
		}
	}

	sort.SliceStable(p.Pending, func(i, j int) bool { return earlier(p.Pending[i], p.Pending[j]) })
	sort.SliceStable(p.Upcoming, func(i, j int) bool { return earlier(p.Upcoming[i], p.Upcoming[j]) })
	sort.SliceStable(p.Past, func(i, j int) bool { return earlier(p.Past[j], p.Past[i]) })
	return p
}

func earlier(a, b models.Appointment) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.StartTime.Before(b.StartTime)
}
