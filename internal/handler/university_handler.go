package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// UniversityHandler exposes the university catalogue.
type UniversityHandler struct {
	service *service.UniversityService
}

// NewUniversityHandler constructs UniversityHandler.
func NewUniversityHandler(svc *service.UniversityService) *UniversityHandler {
	return &UniversityHandler{service: svc}
}

// List godoc
// @Summary List universities
// @Tags Universities
// @Produce json
// @Param partner query bool false "Only partner universities"
// @Success 200 {object} response.Envelope
// @Router /universities [get]
func (h *UniversityHandler) List(c *gin.Context) {
	partnerOnly := c.Query("partner") == "true"
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), partnerOnly), nil)
}

// Get godoc
// @Summary Get university
// @Tags Universities
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [get]
func (h *UniversityHandler) Get(c *gin.Context) {
	uni, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uni, nil)
}

// Create godoc
// @Summary Create university
// @Tags Universities
// @Accept json
// @Produce json
// @Param payload body service.UniversityRequest true "University payload"
// @Success 201 {object} response.Envelope
// @Router /universities [post]
func (h *UniversityHandler) Create(c *gin.Context) {
	var req service.UniversityRequest
	if !bindJSON(c, &req, "invalid university payload") {
		return
	}
	uni, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, uni)
}

// Update godoc
// @Summary Update university
// @Tags Universities
// @Accept json
// @Produce json
// @Param id path string true "University ID"
// @Param payload body service.UpdateUniversityRequest true "University payload"
// @Success 200 {object} response.Envelope
// @Router /universities/{id} [put]
func (h *UniversityHandler) Update(c *gin.Context) {
	var req service.UpdateUniversityRequest
	if !bindJSON(c, &req, "invalid university payload") {
		return
	}
	uni, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uni, nil)
}

// Delete godoc
// @Summary Delete university
// @Tags Universities
// @Param id path string true "University ID"
// @Success 204
// @Router /universities/{id} [delete]
func (h *UniversityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
