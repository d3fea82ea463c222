package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

type remarkRequest struct {
	Remark string `json:"remark"`
}

type assignSupportRequest struct {
	SupportAssigneeID string `json:"supportAssigneeId"`
}

type instructorStatusRequest struct {
	Status string `json:"status"`
	Remark string `json:"remark"`
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or phone"
// @Param status query string false "Filter by pipeline status"
// @Param counselorId query string false "Filter by counselor"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Status = c.Query("status")
	filter.CounselorID = c.Query("counselorId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination := h.students.List(c.Request.Context(), session, filter)
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	student, err := h.students.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.CreateStudentRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	student, err := h.students.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req, "invalid payload") {
		return
	}
	student, err := h.students.Update(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.students.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddRemark godoc
// @Summary Append a remark
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body remarkRequest true "Remark"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/remarks [post]
func (h *StudentHandler) AddRemark(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req remarkRequest
	if !bindJSON(c, &req, "invalid remark payload") {
		return
	}
	student, err := h.students.AddRemark(c.Request.Context(), session, c.Param("id"), req.Remark)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// AssignSupport godoc
// @Summary Assign a customer support agent
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body assignSupportRequest true "Assignee"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/support [put]
func (h *StudentHandler) AssignSupport(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req assignSupportRequest
	if !bindJSON(c, &req, "invalid assignment payload") {
		return
	}
	student, err := h.students.AssignSupport(c.Request.Context(), session, c.Param("id"), req.SupportAssigneeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// SetInstructorStatus godoc
// @Summary Record instructor delivery status
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body instructorStatusRequest true "Status and remark"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/instructor-status [put]
func (h *StudentHandler) SetInstructorStatus(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req instructorStatusRequest
	if !bindJSON(c, &req, "invalid instructor payload") {
		return
	}
	student, err := h.students.SetInstructorStatus(c.Request.Context(), session, c.Param("id"), req.Status, req.Remark)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// WalkIn godoc
// @Summary Register a walk-in inquiry
// @Tags Walk-in
// @Accept json
// @Produce json
// @Param payload body service.WalkInRequest true "Walk-in payload"
// @Success 201 {object} response.Envelope
// @Router /students/walk-in [post]
func (h *StudentHandler) WalkIn(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.WalkInRequest
	if !bindJSON(c, &req, "invalid walk-in payload") {
		return
	}
	student, err := h.students.WalkIn(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}
