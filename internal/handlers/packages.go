package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// PackageHandler handles health package requests.
type PackageHandler struct {
	Svc *services.Services
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(svc *services.Services) *PackageHandler {
	return &PackageHandler{Svc: svc}
}

// ListPackages handles listing health packages, cheapest first.
func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.Svc.Packages.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Packages retrieved successfully", packages)
}

// GetPackage handles fetching a single health package.
func (h *PackageHandler) GetPackage(c *gin.Context) {
	pkg, err := h.Svc.Packages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Package retrieved successfully", pkg)
}

// CreatePackage handles creating a health package.
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.PackageInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pkg, err := h.Svc.Packages.Create(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Package created successfully", pkg)
}

// UpdatePackage handles replacing a health package's fields.
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req services.PackageInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pkg, err := h.Svc.Packages.Update(c.Request.Context(), user, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Package updated successfully", pkg)
}

// DeletePackage handles deleting a health package no appointment references.
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.Svc.Packages.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Package deleted successfully", nil)
}
