package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// ApplicationHandler exposes university application endpoints.
type ApplicationHandler struct {
	service *service.ApplicationService
}

// NewApplicationHandler constructs ApplicationHandler.
func NewApplicationHandler(svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// List godoc
// @Summary List applications
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search by student, university or program"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	filter := service.ApplicationFilter{
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
	}
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), session, filter), nil)
}

// Get godoc
// @Summary Get application
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	app, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Create godoc
// @Summary Create application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body service.ApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.ApplicationRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	app, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, app)
}

// Update godoc
// @Summary Update application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body service.UpdateApplicationRequest true "Application payload"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [put]
func (h *ApplicationHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateApplicationRequest
	if !bindJSON(c, &req, "invalid application payload") {
		return
	}
	app, err := h.service.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// Delete godoc
// @Summary Delete application
// @Tags Applications
// @Param id path string true "Application ID"
// @Success 204
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
