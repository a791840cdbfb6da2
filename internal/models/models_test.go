package models

import (
	"testing"
	"time"
)

func TestUserPassword(t *testing.T) {
	u := &User{}
	if err := u.SetPassword("secret1"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.Password == "secret1" {
		t.Fatal("password stored in clear text")
	}
	if !u.CheckPassword("secret1") {
		t.Error("expected the original password to match")
	}
	if u.CheckPassword("secret2") {
		t.Error("expected a different password to fail")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RolePatient} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	for _, r := range []Role{"", "admin", "NURSE"} {
		if r.Valid() {
			t.Errorf("%q should be invalid", r)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status    AppointmentStatus
		terminal  bool
		holdsSlot bool
	}{
		{StatusPending, false, true},
		{StatusApproved, false, true},
		{StatusCompleted, true, true},
		{StatusRejected, true, false},
		{StatusCanceled, true, false},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v", tt.status, got)
		}
		if got := tt.status.HoldsSlot(); got != tt.holdsSlot {
			t.Errorf("%s.HoldsSlot() = %v", tt.status, got)
		}
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
	got := DateOnly(in)
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", got, want)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now}
	if s.Expired(now) {
		t.Error("a session is still valid at its exact expiry instant")
	}
	if !s.Expired(now.Add(time.Second)) {
		t.Error("expected session to be expired after expiresAt")
	}
}
