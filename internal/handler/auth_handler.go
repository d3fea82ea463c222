package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/service"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// meResponse describes the signed-in user and what their role unlocks.
type meResponse struct {
	Session     *models.Session     `json:"session"`
	RoleName    string              `json:"role_name"`
	Permissions []access.Permission `json:"permissions"`
	Routes      []access.Route      `json:"routes"`
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req, "invalid login payload") {
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Logout godoc
// @Summary Terminate the current session
// @Tags Authentication
// @Produce json
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), session.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	role := session.Identity.Role
	response.JSON(c, http.StatusOK, meResponse{
		Session:     session,
		RoleName:    access.DisplayName(role),
		Permissions: access.Permissions(role),
		Routes:      access.AccessibleRoutes(role),
	}, nil)
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body service.ProfileUpdateRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req service.ProfileUpdateRequest
	if !bindJSON(c, &req, "invalid profile payload") {
		return
	}
	identity, err := h.service.UpdateProfile(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, identity, nil)
}
