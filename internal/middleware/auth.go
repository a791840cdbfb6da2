package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"clinic-booking-server/internal/apperrors"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"
)

const (
	contextUser         = "user"
	contextUserID       = "userID"
	contextUserRole     = "userRole"
	contextSessionToken = "sessionToken"
)

// SessionToken extracts the session token from the Authorization header or,
// failing that, from the session cookie. The transport envelope is verified
// and stripped, so the returned value is the raw store token.
func SessionToken(c *gin.Context, codec *utils.TokenCodec, cookieName string) (string, bool) {
	raw := ""
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", false
		}
		raw = parts[1]
	} else if cookie, err := c.Cookie(cookieName); err == nil {
		raw = cookie
	}
	if raw == "" {
		return "", false
	}

	token, err := codec.Decode(raw)
	if err != nil {
		return "", false
	}
	return token, true
}

// SessionAuth creates a middleware that resolves the caller's session
// through the authorization gate.
func SessionAuth(gate *services.Gate, codec *utils.TokenCodec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := SessionToken(c, codec, cookieName)
		if !ok {
			utils.RespondError(c, apperrors.New(apperrors.Unauthenticated, "authentication required"))
			c.Abort()
			return
		}

		user, err := gate.Authorize(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(contextUser, user)
		c.Set(contextUserID, user.ID)
		c.Set(contextUserRole, user.Role)
		c.Set(contextSessionToken, token)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* SessionAuth.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. SessionAuth might be missing.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.RespondError(c, apperrors.New(apperrors.Forbidden, "You do not have permission to access this resource."))
		c.Abort()
	}
}

// CurrentUser returns the user resolved by SessionAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(contextUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetSessionTokenFromContext returns the raw session token of the request.
func GetSessionTokenFromContext(c *gin.Context) (string, bool) {
	token := c.GetString(contextSessionToken)
	return token, token != ""
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(contextUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get(contextUserRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}
