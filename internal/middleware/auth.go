package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/response"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// token query parameter is accepted as well because EventSource cannot send
// headers.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
}

// AuthRequired rejects requests without a valid access token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("token") == "" {
			response.Error(c, response.NewUnauthorized("authorization header required"))
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, response.NewUnauthorized("invalid authorization header format"))
			return
		}
		claims, err := utils.ParseToken(token)
		if err != nil {
			response.Error(c, response.NewUnauthorized("invalid or expired token"))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := utils.ParseToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRoles lets the request through when the caller has one of roles.
// It must run after AuthRequired.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, response.NewForbidden("insufficient role"))
	}
}

func AdminRequired() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// StaffRequired admits moderators and admins.
func StaffRequired() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleModerator)
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// CurrentPrincipal returns the authenticated caller. Routes behind
// AuthRequired always have one.
func CurrentPrincipal(c *gin.Context) services.Principal {
	return services.Principal{UserID: GetUserID(c), Role: GetRole(c)}
}

// OptionalPrincipal returns nil for anonymous callers.
func OptionalPrincipal(c *gin.Context) *services.Principal {
	if GetUserID(c) == 0 {
		return nil
	}
	p := CurrentPrincipal(c)
	return &p
}
