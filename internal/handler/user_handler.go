package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/service"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// UserHandler handles staff account endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler constructs a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search by name or email"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("role"); raw != "" {
		role, ok := access.ParseRole(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		filter.Active = &active
	}
	response.JSON(c, http.StatusOK, h.service.List(c.Request.Context(), filter), nil)
}

// SupportAgents godoc
// @Summary List active customer support agents
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/support-agents [get]
func (h *UserHandler) SupportAgents(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SupportAgents(c.Request.Context()), nil)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.CreateUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	user, err := h.service.Create(c.Request.Context(), session.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req, "invalid user payload") {
		return
	}
	user, err := h.service.Update(c.Request.Context(), session.Actor(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session.Actor(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
