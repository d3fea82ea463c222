package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/dto"
	"github.com/noah-isme/overseas-crm/internal/middleware"
	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context, session *models.Session) (*dto.DashboardResponse, bool, error)
	Report(ctx context.Context, session *models.Session) (*dto.ReportResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Dashboard godoc
// @Summary Home dashboard summary
// @Description Counselors and employees only see figures for their own students and applications.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Dashboard(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, cacheHit, start)
}

// Report godoc
// @Summary Pipeline report
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *DashboardHandler) Report(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	start := time.Now()
	report, cacheHit, err := h.service.Report(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, report, cacheHit, start)
}

func respondCached(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
