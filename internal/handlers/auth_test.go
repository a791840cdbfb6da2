package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
)

func TestRegisterSetsSessionCookie(t *testing.T) {
	api := newAPI(t)

	w, env := api.request(t, http.MethodPost, "/api/v1/auth/register", "", services.RegisterInput{
		Name: "Pat", Email: "Pat@Example.com", Password: "secret1", Role: models.RolePatient,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if env.Message != "User registered successfully" {
		t.Errorf("message = %q", env.Message)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != api.cfg.CookieName || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	if cookies[0].MaxAge != 24*60*60 {
		t.Errorf("cookie MaxAge = %d, want one day", cookies[0].MaxAge)
	}

	// The cookie alone authenticates.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /auth/me with cookie: status = %d", rec.Code)
	}
}

func TestRegisterErrors(t *testing.T) {
	api := newAPI(t)
	api.register(t, "Pat", "pat@example.com", models.RolePatient)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"duplicate email", services.RegisterInput{Name: "Pat", Email: "PAT@example.com", Password: "secret1", Role: models.RolePatient}, http.StatusConflict, "CONFLICT"},
		{"short password", services.RegisterInput{Name: "Pat", Email: "p2@example.com", Password: "123", Role: models.RolePatient}, http.StatusBadRequest, "INVALID_INPUT"},
		{"self promotion", services.RegisterInput{Name: "Pat", Email: "p3@example.com", Password: "secret1", Role: models.RoleAdmin}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad json", "not an object", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := api.request(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if w.Code != tt.status || env.Code != tt.code {
				t.Errorf("got %d/%q, want %d/%q (body %s)", w.Code, env.Code, tt.status, tt.code, w.Body.String())
			}
		})
	}
}

func TestLoginLogout(t *testing.T) {
	api := newAPI(t)
	api.register(t, "Pat", "pat@example.com", models.RolePatient)

	w, env := api.request(t, http.MethodPost, "/api/v1/auth/login", "", services.LoginInput{Email: "pat@example.com", Password: "wrong-password"})
	if w.Code != http.StatusUnauthorized || env.Code != "UNAUTHENTICATED" {
		t.Fatalf("wrong password: got %d/%q", w.Code, env.Code)
	}

	token := api.login(t, "pat@example.com", "secret1")

	var me models.UserSanitized
	api.expect(t, http.StatusOK, http.MethodGet, "/api/v1/auth/me", token, nil, &me)
	if me.Email != "pat@example.com" || me.Role != models.RolePatient {
		t.Errorf("unexpected profile %+v", me)
	}

	w, _ = api.request(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status = %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected the cookie to be cleared, got %+v", cookies)
	}

	api.expect(t, http.StatusUnauthorized, http.MethodGet, "/api/v1/auth/me", token, nil, nil)

	// Logging out again, or without any session, still succeeds.
	api.expect(t, http.StatusOK, http.MethodPost, "/api/v1/auth/logout", token, nil, nil)
	api.expect(t, http.StatusOK, http.MethodPost, "/api/v1/auth/logout", "", nil, nil)
}

func TestUpdateOwnProfile(t *testing.T) {
	api := newAPI(t)
	token := api.register(t, "Pat", "pat@example.com", models.RolePatient)

	var me models.UserSanitized
	api.expect(t, http.StatusOK, http.MethodPut, "/api/v1/auth/me", token, services.ProfileInput{
		Name: "Patricia", Email: "patricia@example.com",
	}, &me)
	if me.Name != "Patricia" || me.Email != "patricia@example.com" {
		t.Errorf("unexpected profile %+v", me)
	}

	api.login(t, "patricia@example.com", "secret1")
}

func TestProtectedRoutes(t *testing.T) {
	api := newAPI(t)
	patient := api.register(t, "Pat", "pat@example.com", models.RolePatient)
	doctor := api.register(t, "Dr D", "drd@example.com", models.RoleDoctor)

	tests := []struct {
		method, path, token string
		status              int
	}{
		{http.MethodGet, "/api/v1/appointments", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/auth/me", "garbage", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/admin/users", patient, http.StatusForbidden},
		{http.MethodGet, "/api/v1/admin/appointments", doctor, http.StatusForbidden},
		{http.MethodGet, "/api/v1/doctor/profile", patient, http.StatusForbidden},
		{http.MethodPost, "/api/v1/appointments", doctor, http.StatusForbidden},
		{http.MethodPost, "/api/v1/admin/packages", patient, http.StatusForbidden},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/api/v1/doctors", "", http.StatusOK},
		{http.MethodGet, "/api/v1/packages", "", http.StatusOK},
	}

	for _, tt := range tests {
		w, _ := api.request(t, tt.method, tt.path, tt.token, nil)
		if w.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.path, w.Code, tt.status)
		}
	}
}
