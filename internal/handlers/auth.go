package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Svc   *services.Services
	Cfg   *config.Config
	Codec *utils.TokenCodec
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *services.Services, cfg *config.Config, codec *utils.TokenCodec) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg, Codec: codec}
}

// AuthResponse represents the response body for a successful register or login.
type AuthResponse struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expiresAt"`
	User      models.UserSanitized `json:"user"`
}

// Register handles user registration. Doctors get an unapproved profile
// alongside the account. A session is opened right away.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, session, err := h.Svc.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp, ok := h.startSession(c, user, session)
	if !ok {
		return
	}
	utils.Created(c, "User registered successfully", resp)
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, session, err := h.Svc.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp, ok := h.startSession(c, user, session)
	if !ok {
		return
	}
	utils.Success(c, "Login successful", resp)
}

// Logout destroys the caller's session if there is one and clears the
// cookie. Logging out twice is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, ok := middleware.SessionToken(c, h.Codec, h.Cfg.CookieName); ok {
		if err := h.Svc.Accounts.Logout(c.Request.Context(), token); err != nil {
			utils.RespondError(c, err)
			return
		}
	}

	h.setCookie(c, "", -1)
	utils.Success(c, "Logout successful", nil)
}

// GetProfile handles fetching the current user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not found in context")
		return
	}
	utils.Success(c, "Profile retrieved successfully", user.Sanitize())
}

// UpdateProfile handles updating the current user's name and email.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not found in context")
		return
	}

	var req services.ProfileInput
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := h.Svc.Accounts.UpdateProfile(c.Request.Context(), user, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", updated.Sanitize())
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User, session *models.Session) (*AuthResponse, bool) {
	signed, err := h.Codec.Encode(session)
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}

	// Cookie lifetime matches the session's so the browser drops it when
	// the store would reject it.
	maxAge := int(session.ExpiresAt.Sub(session.CreatedAt).Seconds())
	h.setCookie(c, signed, maxAge)

	return &AuthResponse{
		Token:     signed,
		ExpiresAt: session.ExpiresAt,
		User:      user.Sanitize(),
	}, true
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cfg.CookieName, value, maxAge, "/", "", h.Cfg.IsProduction(), true)
}
