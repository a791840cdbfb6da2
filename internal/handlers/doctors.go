package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// DoctorHandler handles doctor directory, doctor profile and slot requests.
type DoctorHandler struct {
	Svc *services.Services
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(svc *services.Services) *DoctorHandler {
	return &DoctorHandler{Svc: svc}
}

// SlotRequest represents the request body for adding a slot. Admins must
// name the doctor profile; doctors default to their own.
type SlotRequest struct {
	DoctorProfileID string `json:"doctorProfileId"`
	Date            string `json:"date" binding:"required"`
	StartTime       string `json:"startTime" binding:"required"`
	EndTime         string `json:"endTime" binding:"required"`
}

// ListDoctors handles listing approved doctors.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	profiles, err := h.Svc.Doctors.ListApproved(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", profiles)
}

// GetDoctor handles fetching one approved doctor with upcoming open slots.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	profile, err := h.Svc.Doctors.GetApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor retrieved successfully", profile)
}

// ListSlots handles listing a doctor's open slots from a date on.
func (h *DoctorHandler) ListSlots(c *gin.Context) {
	var from time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			utils.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}

	slots, err := h.Svc.Ledger.ListBookableSlots(c.Request.Context(), c.Param("id"), from)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Slots retrieved successfully", slots)
}

// GetOwnProfile handles fetching the calling doctor's profile.
func (h *DoctorHandler) GetOwnProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, err := h.Svc.Doctors.GetOwnProfile(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor profile retrieved successfully", profile)
}

// CreateOwnProfile handles creating the calling doctor's profile.
func (h *DoctorHandler) CreateOwnProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.DoctorProfileInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, err := h.Svc.Doctors.CreateOwnProfile(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Doctor profile created successfully", profile)
}

// UpdateOwnProfile handles updating the calling doctor's profile.
func (h *DoctorHandler) UpdateOwnProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.DoctorProfileInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profile, err := h.Svc.Doctors.UpdateOwnProfile(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor profile updated successfully", profile)
}

// AddSlot handles adding an open slot.
func (h *DoctorHandler) AddSlot(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req SlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	profileID := req.DoctorProfileID
	if profileID == "" {
		if user.Role != models.RoleDoctor {
			utils.BadRequest(c, "doctorProfileId is required")
			return
		}
		profile, err := h.Svc.Doctors.GetOwnProfile(c.Request.Context(), user)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		profileID = profile.ID
	}

	date, start, end, err := parseSlotTimes(req)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	slot, err := h.Svc.Ledger.AddSlot(c.Request.Context(), user, profileID, date, start, end)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Slot added successfully", slot)
}

// RemoveSlot handles deleting a slot no active appointment holds.
func (h *DoctorHandler) RemoveSlot(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.Svc.Ledger.RemoveSlot(c.Request.Context(), user, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Slot removed successfully", nil)
}

// ListAllProfiles handles listing every doctor profile for admins.
func (h *DoctorHandler) ListAllProfiles(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profiles, err := h.Svc.Doctors.ListAll(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor profiles retrieved successfully", profiles)
}

// ApproveProfile handles approving a doctor profile.
func (h *DoctorHandler) ApproveProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	profile, err := h.Svc.Doctors.Approve(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor approved successfully", profile)
}

// RejectProfile handles rejecting, and removing, a doctor profile.
func (h *DoctorHandler) RejectProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.Svc.Doctors.Reject(c.Request.Context(), user, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor rejected successfully", nil)
}

type slotFormatError string

func (e slotFormatError) Error() string { return string(e) }

// parseSlotTimes reads a calendar date and two wall clock times on it, all UTC.
func parseSlotTimes(req SlotRequest) (date, start, end time.Time, err error) {
	date, err = time.Parse(dateLayout, req.Date)
	if err != nil {
		return date, start, end, slotFormatError("Invalid date, expected YYYY-MM-DD")
	}
	start, err = time.Parse(dateLayout+" "+clockLayout, req.Date+" "+req.StartTime)
	if err != nil {
		return date, start, end, slotFormatError("Invalid startTime, expected HH:MM")
	}
	end, err = time.Parse(dateLayout+" "+clockLayout, req.Date+" "+req.EndTime)
	if err != nil {
		return date, start, end, slotFormatError("Invalid endTime, expected HH:MM")
	}
	return date, start, end, nil
}
