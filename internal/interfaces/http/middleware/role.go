package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Role names as carried in JWT claims. Roles form a strict hierarchy:
// admin > member > viewer.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// roleRank maps roles to their position in the hierarchy. Unknown roles
// rank below viewer and fail every check.
var roleRank = map[string]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
}

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, requiredRole string)
}

// RequireRole creates middleware that requires at least the given role.
// A user with a higher role in the hierarchy also passes.
func RequireRole(role string) gin.HandlerFunc {
	return RequireRoleWithConfig(role, RoleConfig{})
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(role string, cfg RoleConfig) gin.HandlerFunc {
	required, ok := roleRank[role]
	if !ok {
		// Misconfigured middleware denies everything rather than failing open
		required = roleRank[RoleAdmin] + 1
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, role, "No authentication claims found")
			return
		}

		if roleRank[claims.Role] < required {
			handleRoleDenied(c, cfg, role, "User role is insufficient")
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("Role check passed",
				zap.String("user_id", claims.UserID),
				zap.String("required_role", role),
				zap.String("user_role", claims.Role),
			)
		}

		c.Next()
	}
}

// RequireAdmin creates middleware that only admins pass
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// RequireMember creates middleware that members and admins pass
func RequireMember() gin.HandlerFunc {
	return RequireRole(RoleMember)
}

// HasRole is a helper to check role level in handlers.
// Returns true if the user's role is at least the given role.
func HasRole(c *gin.Context, role string) bool {
	claims := GetJWTClaims(c)
	if claims == nil {
		return false
	}
	required, ok := roleRank[role]
	if !ok {
		return false
	}
	return roleRank[claims.Role] >= required
}

// IsAdmin is a helper to check for the admin role in handlers
func IsAdmin(c *gin.Context) bool {
	return HasRole(c, RoleAdmin)
}

// handleRoleDenied handles role denied scenarios
func handleRoleDenied(c *gin.Context, cfg RoleConfig, requiredRole, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredRole)
		return
	}

	if cfg.Logger != nil {
		userID := ""
		userRole := ""
		if claims := GetJWTClaims(c); claims != nil {
			userID = claims.UserID
			userRole = claims.Role
		}

		cfg.Logger.Warn("Role check denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.String("required_role", requiredRole),
			zap.String("user_role", userRole),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient role",
		},
	})
}
