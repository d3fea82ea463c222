package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// ContextSessionKey is the gin context key storing the authenticated session.
const ContextSessionKey = "session"

// SessionAuthenticator resolves a bearer token into a live session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

// Session protects routes by requiring a bearer token bound to an active
// session.
func Session(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok && session != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
