package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// FinanceHandler exposes student payment endpoints.
type FinanceHandler struct {
	service *service.FinanceService
}

// NewFinanceHandler constructs FinanceHandler.
func NewFinanceHandler(svc *service.FinanceService) *FinanceHandler {
	return &FinanceHandler{service: svc}
}

// Overview godoc
// @Summary Per-student due and paid totals
// @Tags Finance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /finance/overview [get]
func (h *FinanceHandler) Overview(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Overview(c.Request.Context()), nil)
}

// ListPayments godoc
// @Summary List a student's payments
// @Tags Finance
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /finance/students/{studentId}/payments [get]
func (h *FinanceHandler) ListPayments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.ListByStudent(c.Request.Context(), c.Param("studentId")), nil)
}

// AddDue godoc
// @Summary Record a payment due
// @Tags Finance
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body service.AddDueRequest true "Due payload"
// @Success 201 {object} response.Envelope
// @Router /finance/students/{studentId}/payments [post]
func (h *FinanceHandler) AddDue(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.AddDueRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}
	payment, err := h.service.AddDue(c.Request.Context(), session, c.Param("studentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// MarkPaid godoc
// @Summary Mark a due as paid
// @Tags Finance
// @Produce json
// @Param studentId path string true "Student ID"
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /finance/students/{studentId}/payments/{paymentId}/paid [post]
func (h *FinanceHandler) MarkPaid(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	payment, err := h.service.MarkPaid(c.Request.Context(), session, c.Param("studentId"), c.Param("paymentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}
