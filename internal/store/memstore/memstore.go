// Package memstore is an in-memory services.Repository. It backs
// DB_DRIVER=memory for local runs and the service and handler tests.
// One mutex serializes every operation, which makes booking atomic.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

var _ services.Repository = (*Store)(nil)

// Store holds every table in maps keyed by primary key.
type Store struct {
	mu sync.Mutex

	users        map[string]models.User
	userOrder    []string
	sessions     map[string]models.Session
	profiles     map[string]models.DoctorProfile
	slots        map[string]models.Availability
	appointments map[string]models.Appointment
	packages     map[string]models.HealthPackage
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]models.User),
		sessions:     make(map[string]models.Session),
		profiles:     make(map[string]models.DoctorProfile),
		slots:        make(map[string]models.Availability),
		appointments: make(map[string]models.Appointment),
		packages:     make(map[string]models.HealthPackage),
	}
}

func stamp(b *models.BaseModel) {
	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func notFound(what string) error {
	return apperrors.New(apperrors.NotFound, what+" not found")
}

// Users

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, u := range s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, user *models.User, profile *models.DoctorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, "") {
		return apperrors.New(apperrors.Conflict, "email already in use")
	}
	stamp(&user.BaseModel)
	s.users[user.ID] = *user
	s.userOrder = append(s.userOrder, user.ID)

	if profile != nil {
		profile.UserID = user.ID
		stamp(&profile.BaseModel)
		p := *profile
		p.User = nil
		p.Availabilities = nil
		s.profiles[p.ID] = p
	}
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.userOrder))
	for i := len(s.userOrder) - 1; i >= 0; i-- {
		if u, ok := s.users[s.userOrder[i]]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return notFound("user")
	}
	if s.emailTaken(user.Email, user.ID) {
		return apperrors.New(apperrors.Conflict, "email already in use")
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return notFound("user")
	}
	for _, a := range s.appointments {
		if a.PatientID == id || a.DoctorID == id {
			return apperrors.New(apperrors.Conflict, "user has appointments")
		}
	}

	for token, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, token)
		}
	}
	for pid, p := range s.profiles {
		if p.UserID == id {
			s.deleteSlotsOf(pid)
			delete(s.profiles, pid)
		}
	}
	delete(s.users, id)
	for i, uid := range s.userOrder {
		if uid == id {
			s.userOrder = append(s.userOrder[:i], s.userOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Sessions

func (s *Store) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return notFound("user")
	}
	if _, ok := s.sessions[session.Token]; ok {
		return apperrors.New(apperrors.Conflict, "session token collision")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	s.sessions[session.Token] = *session
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, notFound("session")
	}
	return &sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// SessionCount reports how many sessions are stored.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Doctor profiles

func (s *Store) withUser(p models.DoctorProfile) models.DoctorProfile {
	if u, ok := s.users[p.UserID]; ok {
		p.User = &u
	}
	return p
}

func (s *Store) CreateDoctorProfile(_ context.Context, profile *models.DoctorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[profile.UserID]; !ok {
		return notFound("user")
	}
	for _, p := range s.profiles {
		if p.UserID == profile.UserID {
			return apperrors.New(apperrors.Conflict, "doctor profile already exists")
		}
	}
	stamp(&profile.BaseModel)
	p := *profile
	p.User = nil
	p.Availabilities = nil
	s.profiles[p.ID] = p
	return nil
}

func (s *Store) GetDoctorProfile(_ context.Context, id string) (*models.DoctorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, notFound("doctor profile")
	}
	p = s.withUser(p)
	return &p, nil
}

func (s *Store) GetDoctorProfileByUser(_ context.Context, userID string) (*models.DoctorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.profiles {
		if p.UserID == userID {
			p = s.withUser(p)
			return &p, nil
		}
	}
	return nil, notFound("doctor profile")
}

func (s *Store) ListDoctorProfiles(_ context.Context, approvedOnly bool) ([]models.DoctorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.DoctorProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if approvedOnly && !p.IsApproved {
			continue
		}
		out = append(out, s.withUser(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateDoctorProfile(_ context.Context, profile *models.DoctorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.ID]
	if !ok {
		return notFound("doctor profile")
	}
	existing.Specialty = profile.Specialty
	existing.Bio = profile.Bio
	existing.IsApproved = profile.IsApproved
	existing.UpdatedAt = time.Now().UTC()
	s.profiles[profile.ID] = existing
	return nil
}

func (s *Store) DeleteDoctorProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return notFound("doctor profile")
	}
	for _, a := range s.appointments {
		if a.DoctorProfileID == id {
			return apperrors.New(apperrors.Conflict, "doctor profile has appointments")
		}
	}
	s.deleteSlotsOf(id)
	delete(s.profiles, id)
	return nil
}

func (s *Store) deleteSlotsOf(profileID string) {
	for id, slot := range s.slots {
		if slot.DoctorProfileID == profileID {
			delete(s.slots, id)
		}
	}
}

// Availability

func (s *Store) CreateAvailability(_ context.Context, slot *models.Availability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[slot.DoctorProfileID]; !ok {
		return notFound("doctor profile")
	}
	stamp(&slot.BaseModel)
	s.slots[slot.ID] = *slot
	return nil
}

func (s *Store) GetAvailability(_ context.Context, id string) (*models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, notFound("availability")
	}
	return &slot, nil
}

func (s *Store) ListOpenAvailability(_ context.Context, doctorProfileID string, from time.Time) ([]models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Availability{}
	for _, slot := range s.slots {
		if slot.DoctorProfileID != doctorProfileID || slot.IsBooked || slot.Date.Before(from) {
			continue
		}
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) DeleteAvailability(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return notFound("availability")
	}
	for _, a := range s.appointments {
		if a.AvailabilityID != nil && *a.AvailabilityID == id && a.Status.HoldsSlot() {
			return apperrors.New(apperrors.SlotConsumed, "slot is referenced by an active appointment")
		}
	}
	delete(s.slots, id)
	return nil
}

// Appointments

func (s *Store) BookAppointment(_ context.Context, appt *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.AvailabilityID == nil {
		return apperrors.New(apperrors.InvalidInput, "availability is required")
	}
	slot, ok := s.slots[*appt.AvailabilityID]
	if !ok {
		return notFound("availability")
	}
	if slot.IsBooked {
		return apperrors.New(apperrors.SlotUnavailable, "slot is no longer available")
	}

	slot.IsBooked = true
	slot.UpdatedAt = time.Now().UTC()
	s.slots[slot.ID] = slot

	stamp(&appt.BaseModel)
	a := *appt
	a.Patient, a.Doctor, a.DoctorProfile, a.HealthPackage = nil, nil, nil, nil
	s.appointments[a.ID] = a
	return nil
}

func (s *Store) hydrate(a models.Appointment) models.Appointment {
	if u, ok := s.users[a.PatientID]; ok {
		a.Patient = &u
	}
	if u, ok := s.users[a.DoctorID]; ok {
		a.Doctor = &u
	}
	if p, ok := s.profiles[a.DoctorProfileID]; ok {
		p = s.withUser(p)
		a.DoctorProfile = &p
	}
	if a.HealthPackageID != nil {
		if pkg, ok := s.packages[*a.HealthPackageID]; ok {
			a.HealthPackage = &pkg
		}
	}
	return a
}

func (s *Store) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	a = s.hydrate(a)
	return &a, nil
}

func (s *Store) ListAppointments(_ context.Context, filter services.AppointmentFilter) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Appointment{}
	for _, a := range s.appointments {
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorProfileID != "" && a.DoctorProfileID != filter.DoctorProfileID {
			continue
		}
		out = append(out, s.hydrate(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) TransitionAppointment(_ context.Context, id string, from, to models.AppointmentStatus, releaseSlot bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return notFound("appointment")
	}
	if a.Status != from {
		return apperrors.New(apperrors.InvalidTransition, "appointment status changed concurrently")
	}

	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a

	if releaseSlot && a.AvailabilityID != nil {
		if slot, ok := s.slots[*a.AvailabilityID]; ok {
			slot.IsBooked = false
			s.slots[slot.ID] = slot
		}
	}
	return nil
}

// Health packages

func (s *Store) CreateHealthPackage(_ context.Context, pkg *models.HealthPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&pkg.BaseModel)
	s.packages[pkg.ID] = *pkg
	return nil
}

func (s *Store) GetHealthPackage(_ context.Context, id string) (*models.HealthPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkg, ok := s.packages[id]
	if !ok {
		return nil, notFound("health package")
	}
	return &pkg, nil
}

func (s *Store) ListHealthPackages(_ context.Context) ([]models.HealthPackage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HealthPackage, 0, len(s.packages))
	for _, pkg := range s.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (s *Store) UpdateHealthPackage(_ context.Context, pkg *models.HealthPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packages[pkg.ID]; !ok {
		return notFound("health package")
	}
	pkg.UpdatedAt = time.Now().UTC()
	s.packages[pkg.ID] = *pkg
	return nil
}

func (s *Store) DeleteHealthPackage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.packages[id]; !ok {
		return notFound("health package")
	}
	for _, a := range s.appointments {
		if a.HealthPackageID != nil && *a.HealthPackageID == id {
			return apperrors.New(apperrors.Conflict, "health package is referenced by appointments")
		}
	}
	delete(s.packages, id)
	return nil
}
