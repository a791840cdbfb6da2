package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// UserHandler handles admin user management requests.
type UserHandler struct {
	Svc *services.Services
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *services.Services) *UserHandler {
	return &UserHandler{Svc: svc}
}

// GetUsers handles listing all users.
func (h *UserHandler) GetUsers(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	users, err := h.Svc.Accounts.ListUsers(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sanitized := make([]models.UserSanitized, 0, len(users))
	for i := range users {
		sanitized = append(sanitized, users[i].Sanitize())
	}
	utils.Success(c, "Users retrieved successfully", sanitized)
}

// GetUserByID handles fetching a single user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	target, err := h.Svc.Accounts.GetUser(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User retrieved successfully", target.Sanitize())
}

// UpdateUser handles updating a user's details, including their role.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.UserUpdateInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.Svc.Accounts.UpdateUser(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User updated successfully", updated.Sanitize())
}

// DeleteUser handles deleting a user. Admins cannot delete themselves.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	if err := h.Svc.Accounts.DeleteUser(c.Request.Context(), user, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}
