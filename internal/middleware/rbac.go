package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/access"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// RequirePermission admits sessions holding any of perms.
func RequirePermission(perms ...access.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, p := range perms {
			if session.HasPermission(p) {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "insufficient permissions"))
		c.Abort()
	}
}

// RequireRoute admits sessions whose role can open route.
func RequireRoute(route access.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !session.CanAccessRoute(route) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "route not available for role"))
			c.Abort()
			return
		}
		c.Next()
	}
}
