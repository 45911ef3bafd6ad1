package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
	"github.com/PrincipieCyupe/tyi/pkg/response"
)

// ContextAdminKey is the gin context key storing the verified admin principal.
const ContextAdminKey = "adminPrincipal"

// RequireRoles admits requests whose token carries one of roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireMember admits member tokens, which always carry a user id.
func RequireMember() gin.HandlerFunc {
	roles := RequireRoles(models.RoleMember)
	return func(c *gin.Context) {
		roles(c)
		if c.IsAborted() {
			return
		}
		if claims, _ := Claims(c); claims.UserID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "member token required"))
			c.Abort()
		}
	}
}

// RequireAdmin admits admin tokens and stores the AdminPrincipal for handlers.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		principal := models.AdminFromClaims(claims)
		if principal == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin access required"))
			c.Abort()
			return
		}
		c.Set(ContextAdminKey, principal)
		c.Next()
	}
}

// Admin returns the principal stored by RequireAdmin, or nil.
func Admin(c *gin.Context) *models.AdminPrincipal {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*models.AdminPrincipal)
	return principal
}
