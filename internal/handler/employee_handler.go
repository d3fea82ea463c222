package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// EmployeeHandler exposes the staff directory.
type EmployeeHandler struct {
	service *service.EmployeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(svc *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: svc}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	department := strings.TrimSpace(c.Query("department"))
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), department), nil)
}

// Get godoc
// @Summary Get employee
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.EmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.EmployeeRequest
	if !bindJSON(c, &req, "invalid employee payload") {
		return
	}
	employee, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if !bindJSON(c, &req, "invalid employee payload") {
		return
	}
	employee, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Delete employee
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
