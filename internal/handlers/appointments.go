package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Svc *services.Services
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(svc *services.Services) *AppointmentHandler {
	return &AppointmentHandler{Svc: svc}
}

type transitionFunc func(ctx context.Context, actor *models.User, id string) (*models.Appointment, error)

// CreateAppointment handles booking a slot. Only patients book, for
// themselves.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.BookRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Svc.Appointments.Book(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

// GetAppointmentsForUser handles listing the caller's appointments split
// into pending, upcoming and past.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	groups, err := h.Svc.Appointments.ListForActor(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", groups)
}

// GetAppointmentByID handles fetching an appointment the caller is party to.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	appt, err := h.Svc.Appointments.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appt)
}

// Approve handles PENDING -> APPROVED.
func (h *AppointmentHandler) Approve(c *gin.Context) {
	h.transition(c, h.Svc.Appointments.Approve, "Appointment approved successfully")
}

// Reject handles PENDING -> REJECTED.
func (h *AppointmentHandler) Reject(c *gin.Context) {
	h.transition(c, h.Svc.Appointments.Reject, "Appointment rejected successfully")
}

// Cancel handles PENDING or APPROVED -> CANCELED.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.Svc.Appointments.Cancel, "Appointment canceled successfully")
}

// Complete handles APPROVED -> COMPLETED.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.Svc.Appointments.Complete, "Appointment completed successfully")
}

func (h *AppointmentHandler) transition(c *gin.Context, fn transitionFunc, message string) {
	user, _ := middleware.CurrentUser(c)

	appt, err := fn(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, message, appt)
}

// ListAllAppointments handles listing every appointment for admins.
func (h *AppointmentHandler) ListAllAppointments(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	appts, err := h.Svc.Appointments.ListAll(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointments retrieved successfully", appts)
}
