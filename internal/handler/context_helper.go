package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/middleware"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// sessionFromContext returns the request session, answering 401 when the
// route was reached without one.
func sessionFromContext(c *gin.Context) (*models.Session, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "no user logged in"))
		return nil, false
	}
	return session, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message))
		return false
	}
	return true
}
