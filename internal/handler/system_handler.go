package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// SystemHandler exposes administrative store operations.
type SystemHandler struct {
	bootstrap *service.BootstrapService
}

// NewSystemHandler constructs SystemHandler.
func NewSystemHandler(bootstrap *service.BootstrapService) *SystemHandler {
	return &SystemHandler{bootstrap: bootstrap}
}

// Reset godoc
// @Summary Wipe all data and reseed the super user
// @Tags System
// @Success 204
// @Router /system/reset [post]
func (h *SystemHandler) Reset(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.bootstrap.Reset(c.Request.Context(), session.Actor()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
