package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/service"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit entries, newest first
// @Tags Audit
// @Produce json
// @Param action query string false "Filter by action"
// @Param actorId query string false "Filter by actor"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), filter), nil)
}

func auditFilterFromQuery(c *gin.Context) (models.AuditFilter, error) {
	filter := models.AuditFilter{
		Action:  c.Query("action"),
		ActorID: c.Query("actorId"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}
