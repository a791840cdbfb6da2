package handlers_test

import (
	"net/http"
	"testing"

	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t)
	doctor, profileID := api.approvedDoctor(t, "Dr D", "drd@example.com")
	slot := api.addSlot(t, doctor, "2025-06-01", "09:00", "09:30")

	var open []models.Availability
	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/doctors/"+profileID+"/slots", "", nil, &open)
	if len(open) != 1 || open[0].ID != slot.ID {
		t.Fatalf("expected the new slot to be listed, got %+v", open)
	}

	patient := api.register(t, "Pat", "pat@example.com", models.RolePatient)
	other := api.register(t, "Olly", "olly@example.com", models.RolePatient)

	book := services.BookRequest{DoctorProfileID: profileID, AvailabilityID: slot.ID, Notes: "first visit"}
	var appt models.Appointment
	api.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/appointments", patient, book, &appt)
	if appt.Status != models.StatusPending || appt.Notes != "first visit" {
		t.Fatalf("unexpected appointment %+v", appt)
	}

	env := api.expect(t, http.StatusConflict, http.MethodPost, "/api/v1/appointments", other, book, nil)
	if env.Code != "SLOT_UNAVAILABLE" {
		t.Errorf("second booking: code = %q", env.Code)
	}

	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/doctors/"+profileID+"/slots", "", nil, &open)
	if len(open) != 0 {
		t.Errorf("consumed slot still listed: %+v", open)
	}

	base := "/api/v1/appointments/" + appt.ID
	api.expect(t, http.StatusForbidden, http.MethodGet, base, other, nil, nil)
	api.expect(t, http.StatusForbidden, http.MethodPost, base+"/approve", patient, nil, nil)
	api.expect(t, http.StatusForbidden, http.MethodPost, base+"/cancel", other, nil, nil)

	api.expect(t, http.StatusOK, http.MethodPost, base+"/approve", doctor, nil, &appt)
	if appt.Status != models.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", appt.Status)
	}

	env = api.expect(t, http.StatusConflict, http.MethodPost, base+"/reject", doctor, nil, nil)
	if env.Code != "INVALID_TRANSITION" {
		t.Errorf("reject approved: code = %q", env.Code)
	}

	var groups services.Partitioned
	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/appointments", patient, nil, &groups)
	if len(groups.Pending) != 0 || len(groups.Upcoming) != 1 || len(groups.Past) != 0 {
		t.Errorf("unexpected grouping %+v", groups)
	}

	api.expect(t, http.StatusOK, http.MethodPost, base+"/complete", doctor, nil, &appt)
	if appt.Status != models.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", appt.Status)
	}
	api.expect(t, http.StatusConflict, http.MethodPost, base+"/cancel", patient, nil, nil)

	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/appointments", patient, nil, &groups)
	if len(groups.Past) != 1 {
		t.Errorf("completed appointment should be past, got %+v", groups)
	}

	admin := api.login(t, "admin@example.com", "secret1")
	var all []models.Appointment
	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/admin/appointments", admin, nil, &all)
	if len(all) != 1 {
		t.Errorf("admin sees %d appointments, want 1", len(all))
	}
}

func TestBookingPreconditionsOverHTTP(t *testing.T) {
	api := newAPI(t)
	doctor, profileID := api.approvedDoctor(t, "Dr D", "drd@example.com")
	_, otherProfile := api.approvedDoctor(t, "Dr E", "dre@example.com")
	patient := api.register(t, "Pat", "pat@example.com", models.RolePatient)

	slot := api.addSlot(t, doctor, "2025-06-01", "09:00", "09:30")
	past := api.addSlot(t, doctor, "2025-05-01", "09:00", "09:30")
	missing := "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name   string
		req    services.BookRequest
		status int
		code   string
	}{
		{"missing ids", services.BookRequest{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown slot", services.BookRequest{DoctorProfileID: profileID, AvailabilityID: missing}, http.StatusNotFound, "NOT_FOUND"},
		{"slot of another doctor", services.BookRequest{DoctorProfileID: otherProfile, AvailabilityID: slot.ID}, http.StatusNotFound, "NOT_FOUND"},
		{"slot in the past", services.BookRequest{DoctorProfileID: profileID, AvailabilityID: past.ID}, http.StatusConflict, "SLOT_UNAVAILABLE"},
		{"unknown package", services.BookRequest{DoctorProfileID: profileID, AvailabilityID: slot.ID, HealthPackageID: &missing}, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.request(t, http.MethodPost, "/api/v1/appointments", patient, tt.req)
			if w.Code != tt.status || env.Code != tt.code {
				t.Errorf("got %d/%q, want %d/%q (body %s)", w.Code, env.Code, tt.status, tt.code, w.Body.String())
			}
		})
	}

	// None of the failed attempts consumed the slot.
	api.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/appointments", patient, services.BookRequest{
		DoctorProfileID: profileID, AvailabilityID: slot.ID,
	}, nil)
}

func TestSlotManagementOverHTTP(t *testing.T) {
	api := newAPI(t)
	doctor, profileID := api.approvedDoctor(t, "Dr D", "drd@example.com")
	otherDoctor, _ := api.approvedDoctor(t, "Dr E", "dre@example.com")
	admin := api.login(t, "admin@example.com", "secret1")
	patient := api.register(t, "Pat", "pat@example.com", models.RolePatient)

	tests := []struct {
		name   string
		token  string
		req    handlers.SlotRequest
		status int
		code   string
	}{
		{"bad date", doctor, handlers.SlotRequest{Date: "01/06/2025", StartTime: "09:00", EndTime: "09:30"}, http.StatusBadRequest, ""},
		{"bad clock", doctor, handlers.SlotRequest{Date: "2025-06-01", StartTime: "9am", EndTime: "09:30"}, http.StatusBadRequest, ""},
		{"end before start", doctor, handlers.SlotRequest{Date: "2025-06-01", StartTime: "10:00", EndTime: "09:30"}, http.StatusBadRequest, "INVALID_RANGE"},
		{"zero length", doctor, handlers.SlotRequest{Date: "2025-06-01", StartTime: "10:00", EndTime: "10:00"}, http.StatusBadRequest, "INVALID_RANGE"},
		{"admin without profile", admin, handlers.SlotRequest{Date: "2025-06-01", StartTime: "09:00", EndTime: "09:30"}, http.StatusBadRequest, ""},
		{"other doctor's profile", otherDoctor, handlers.SlotRequest{DoctorProfileID: profileID, Date: "2025-06-01", StartTime: "09:00", EndTime: "09:30"}, http.StatusForbidden, "FORBIDDEN"},
		{"patient", patient, handlers.SlotRequest{Date: "2025-06-01", StartTime: "09:00", EndTime: "09:30"}, http.StatusForbidden, "FORBIDDEN"},
		{"admin for doctor", admin, handlers.SlotRequest{DoctorProfileID: profileID, Date: "2025-06-01", StartTime: "11:00", EndTime: "11:30"}, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.request(t, http.MethodPost, "/api/v1/doctor/slots", tt.token, tt.req)
			if w.Code != tt.status || env.Code != tt.code {
				t.Errorf("got %d/%q, want %d/%q (body %s)", w.Code, env.Code, tt.status, tt.code, w.Body.String())
			}
		})
	}

	free := api.addSlot(t, doctor, "2025-06-02", "09:00", "09:30")
	taken := api.addSlot(t, doctor, "2025-06-03", "09:00", "09:30")
	api.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/appointments", patient, services.BookRequest{
		DoctorProfileID: profileID, AvailabilityID: taken.ID,
	}, nil)

	api.expect(t, http.StatusForbidden, http.MethodDelete, "/api/v1/slots/"+free.ID, otherDoctor, nil, nil)
	api.expect(t, http.StatusOK, http.MethodDelete, "/api/v1/slots/"+free.ID, doctor, nil, nil)
	api.expect(t, http.StatusNotFound, http.MethodDelete, "/api/v1/slots/"+free.ID, doctor, nil, nil)

	env := api.expect(t, http.StatusConflict, http.MethodDelete, "/api/v1/slots/"+taken.ID, admin, nil, nil)
	if env.Code != "SLOT_CONSUMED" {
		t.Errorf("delete held slot: code = %q", env.Code)
	}
}
