package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/store/memstore"
)

// 2025-05-20 10:00 UTC, a few days before the slots used below.
var startOfTests = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	svc   *services.Services
	store *memstore.Store
	clock *testClock
	admin *models.User
}

func newTestEnv(t *testing.T, opts ...func(*services.Options)) *testEnv {
	t.Helper()

	clock := &testClock{now: startOfTests}
	o := services.Options{Now: clock.Now}
	for _, fn := range opts {
		fn(&o)
	}

	st := memstore.New()
	env := &testEnv{svc: services.New(st, o), store: st, clock: clock}

	admin, err := env.svc.Accounts.CreateAdmin(context.Background(), "Ada Admin", "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	env.admin = admin
	return env
}

func withRelease(o *services.Options) { o.ReleaseSlotOnCancel = true }

func (e *testEnv) register(t *testing.T, name string, role models.Role) (*models.User, *models.Session) {
	t.Helper()
	user, session, err := e.svc.Accounts.Register(context.Background(), services.RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret1",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	return user, session
}

func (e *testEnv) patient(t *testing.T, name string) *models.User {
	t.Helper()
	user, _ := e.register(t, name, models.RolePatient)
	return user
}

// approvedDoctor registers a doctor and has the admin approve the profile.
func (e *testEnv) approvedDoctor(t *testing.T, name string) (*models.User, *models.DoctorProfile) {
	t.Helper()
	ctx := context.Background()

	user, _ := e.register(t, name, models.RoleDoctor)
	profile, err := e.svc.Doctors.GetOwnProfile(ctx, user)
	if err != nil {
		t.Fatalf("GetOwnProfile: %v", err)
	}
	profile, err = e.svc.Doctors.Approve(ctx, e.admin, profile.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return user, profile
}

func at(day string, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *testEnv) addSlot(t *testing.T, doctor *models.User, profile *models.DoctorProfile, day, start, end string) *models.Availability {
	t.Helper()
	slot, err := e.svc.Ledger.AddSlot(context.Background(), doctor, profile.ID, at(day, "00:00"), at(day, start), at(day, end))
	if err != nil {
		t.Fatalf("AddSlot: %v", err)
	}
	return slot
}

func (e *testEnv) book(t *testing.T, patient *models.User, slot *models.Availability) *models.Appointment {
	t.Helper()
	appt, err := e.svc.Appointments.Book(context.Background(), patient, services.BookRequest{
		DoctorProfileID: slot.DoctorProfileID,
		AvailabilityID:  slot.ID,
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	return appt
}
