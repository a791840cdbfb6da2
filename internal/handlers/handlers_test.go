package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/routes"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/store/memstore"
)

var testNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type apiEnv struct {
	router *gin.Engine
	svc    *services.Services
	cfg    *config.Config
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:   "test",
		SessionSecret: "test-secret",
		SessionTTL:    24 * time.Hour,
		CookieName:    "session_token",
	}
	svc := services.New(memstore.New(), services.Options{
		SessionTTL: cfg.SessionTTL,
		Now:        func() time.Time { return testNow },
	})
	if _, err := svc.Accounts.CreateAdmin(context.Background(), "Ada Admin", "admin@example.com", "secret1"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	router := gin.New()
	routes.SetupRoutes(router, svc, cfg, nil)
	return &apiEnv{router: router, svc: svc, cfg: cfg}
}

func (a *apiEnv) request(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	// Bodies outside the envelope (the health check) leave env empty.
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// expect performs a request and fails the test unless it returns status.
func (a *apiEnv) expect(t *testing.T, status int, method, path, token string, body, out interface{}) envelope {
	t.Helper()
	w, env := a.request(t, method, path, token, body)
	if w.Code != status {
		t.Fatalf("%s %s: status = %d, want %d (body %s)", method, path, w.Code, status, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}

func (a *apiEnv) register(t *testing.T, name, email string, role models.Role) string {
	t.Helper()
	var resp handlers.AuthResponse
	a.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/auth/register", "", services.RegisterInput{
		Name: name, Email: email, Password: "secret1", Role: role,
	}, &resp)
	return resp.Token
}

func (a *apiEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	var resp handlers.AuthResponse
	a.expect(t, http.StatusOK, http.MethodPost, "/api/v1/auth/login", "", services.LoginInput{
		Email: email, Password: password,
	}, &resp)
	return resp.Token
}

// approvedDoctor registers a doctor, has the admin approve them and returns
// the doctor's token and profile id.
func (a *apiEnv) approvedDoctor(t *testing.T, name, email string) (string, string) {
	t.Helper()
	token := a.register(t, name, email, models.RoleDoctor)

	var profile models.DoctorProfile
	a.expect(t, http.StatusOK, http.MethodGet, "/api/v1/doctor/profile", token, nil, &profile)

	admin := a.login(t, "admin@example.com", "secret1")
	a.expect(t, http.StatusOK, http.MethodPost, "/api/v1/admin/doctors/"+profile.ID+"/approve", admin, nil, nil)
	return token, profile.ID
}

func (a *apiEnv) addSlot(t *testing.T, token, date, start, end string) models.Availability {
	t.Helper()
	var slot models.Availability
	a.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/doctor/slots", token, handlers.SlotRequest{
		Date: date, StartTime: start, EndTime: end,
	}, &slot)
	return slot
}
