package services_test

import (
	"context"
	"errors"
	"testing"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

func TestAuthorize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, session := env.register(t, "pat", models.RolePatient)

	if _, err := env.svc.Gate.Authorize(ctx, session.Token); err != nil {
		t.Fatalf("no role requirement: %v", err)
	}
	if _, err := env.svc.Gate.Authorize(ctx, session.Token, models.RolePatient); err != nil {
		t.Fatalf("matching role: %v", err)
	}
	if _, err := env.svc.Gate.Authorize(ctx, session.Token, models.RoleDoctor, models.RoleAdmin); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected Forbidden, got %v", err)
	}
	if _, err := env.svc.Gate.Authorize(ctx, "bogus", models.RolePatient); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestPermissionMatrix(t *testing.T) {
	patient := &models.User{BaseModel: models.BaseModel{ID: "p1"}, Role: models.RolePatient}
	otherPatient := &models.User{BaseModel: models.BaseModel{ID: "p2"}, Role: models.RolePatient}
	doctor := &models.User{BaseModel: models.BaseModel{ID: "d1"}, Role: models.RoleDoctor}
	otherDoctor := &models.User{BaseModel: models.BaseModel{ID: "d2"}, Role: models.RoleDoctor}
	admin := &models.User{BaseModel: models.BaseModel{ID: "a1"}, Role: models.RoleAdmin}

	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	type row struct {
		user    *models.User
		allowed map[services.Action]bool
	}
	rows := map[string]row{
		"own patient": {patient, map[services.Action]bool{
			services.ActionView: true, services.ActionCancel: true,
		}},
		"other patient": {otherPatient, map[services.Action]bool{}},
		"own doctor": {doctor, map[services.Action]bool{
			services.ActionView: true, services.ActionApprove: true, services.ActionReject: true,
			services.ActionCancel: true, services.ActionComplete: true,
		}},
		"other doctor": {otherDoctor, map[services.Action]bool{}},
		"admin": {admin, map[services.Action]bool{
			services.ActionView: true, services.ActionApprove: true, services.ActionReject: true,
			services.ActionCancel: true, services.ActionComplete: true,
		}},
	}

	actions := []services.Action{
		services.ActionView, services.ActionApprove, services.ActionReject,
		services.ActionCancel, services.ActionComplete,
	}

	for name, r := range rows {
		for _, action := range actions {
			got := services.Allowed(r.user, action, appt)
			if got != r.allowed[action] {
				t.Errorf("%s %s: allowed = %v, want %v", name, action, got, r.allowed[action])
			}
		}
	}
}

func TestOnlyPatientsBook(t *testing.T) {
	for _, role := range []models.Role{models.RoleDoctor, models.RoleAdmin} {
		if services.Allowed(&models.User{Role: role}, services.ActionBook, nil) {
			t.Errorf("%s should not be allowed to book", role)
		}
	}
	if !services.Allowed(&models.User{Role: models.RolePatient}, services.ActionBook, nil) {
		t.Error("patients should be allowed to book")
	}
}

func TestPatientIsNeverDoctorParty(t *testing.T) {
	// Same id on both sides: the role decides which side the user is on.
	u := &models.User{BaseModel: models.BaseModel{ID: "x"}, Role: models.RolePatient}
	appt := &models.Appointment{PatientID: "x", DoctorID: "x"}

	if services.PartiesOf(u, appt)&services.PartyDoctor != 0 {
		t.Fatal("a patient must never count as the doctor party")
	}
	for _, action := range []services.Action{services.ActionApprove, services.ActionReject, services.ActionComplete} {
		if services.Allowed(u, action, appt) {
			t.Errorf("patient allowed to %s", action)
		}
	}
}
