package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// PayrollHandler exposes pay details and paysheets.
type PayrollHandler struct {
	service *service.PayrollService
}

// NewPayrollHandler constructs PayrollHandler.
func NewPayrollHandler(svc *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{service: svc}
}

// PayDetails godoc
// @Summary List employees with their current pay detail
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/pay-details [get]
func (h *PayrollHandler) PayDetails(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.PayDetails(c.Request.Context()), nil)
}

// UpsertPayDetail godoc
// @Summary Replace an employee's pay detail
// @Description employeeKey is the employee email, or the name when no email is on file.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param employeeKey path string true "Employee key"
// @Param payload body service.PayDetailRequest true "Pay detail payload"
// @Success 200 {object} response.Envelope
// @Router /payroll/pay-details/{employeeKey} [put]
func (h *PayrollHandler) UpsertPayDetail(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.PayDetailRequest
	if !bindJSON(c, &req, "invalid pay detail payload") {
		return
	}
	detail, err := h.service.UpsertPayDetail(c.Request.Context(), session, c.Param("employeeKey"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// PaySheets godoc
// @Summary List paysheets
// @Tags Payroll
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payroll/paysheets [get]
func (h *PayrollHandler) PaySheets(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.PaySheets(c.Request.Context()), nil)
}

// PaySheet godoc
// @Summary Get paysheet
// @Tags Payroll
// @Produce json
// @Param id path string true "Paysheet ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/paysheets/{id} [get]
func (h *PayrollHandler) PaySheet(c *gin.Context) {
	sheet, err := h.service.PaySheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Generate godoc
// @Summary Generate a draft paysheet for a month
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payload body service.GeneratePaySheetRequest true "Month (YYYY-MM)"
// @Success 201 {object} response.Envelope
// @Router /payroll/paysheets [post]
func (h *PayrollHandler) Generate(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.GeneratePaySheetRequest
	if !bindJSON(c, &req, "invalid paysheet payload") {
		return
	}
	sheet, err := h.service.Generate(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sheet)
}

// Approve godoc
// @Summary Approve a draft paysheet
// @Tags Payroll
// @Produce json
// @Param id path string true "Paysheet ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/paysheets/{id}/approve [post]
func (h *PayrollHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Revert godoc
// @Summary Revert an approved paysheet to draft
// @Tags Payroll
// @Produce json
// @Param id path string true "Paysheet ID"
// @Success 200 {object} response.Envelope
// @Router /payroll/paysheets/{id}/revert [post]
func (h *PayrollHandler) Revert(c *gin.Context) {
	h.transition(c, h.service.Revert)
}

func (h *PayrollHandler) transition(c *gin.Context, fn func(context.Context, *models.Session, string) (*models.PaySheet, error)) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	sheet, err := fn(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}
