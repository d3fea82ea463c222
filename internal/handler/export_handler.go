package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/service"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/export"
	"github.com/noah-isme/overseas-crm/pkg/response"
)

// ExportHandler renders exports and serves signed downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// PaySheet godoc
// @Summary Export a paysheet
// @Tags Exports
// @Produce json
// @Param id path string true "Paysheet ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 201 {object} response.Envelope
// @Router /exports/paysheets/{id} [post]
func (h *ExportHandler) PaySheet(c *gin.Context) {
	format, ok := formatFromQuery(c)
	if !ok {
		return
	}
	result, err := h.service.PaySheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// AuditLog godoc
// @Summary Export the audit log
// @Tags Exports
// @Produce json
// @Param format query string false "csv or pdf" default(csv)
// @Param action query string false "Filter by action"
// @Param actorId query string false "Filter by actor"
// @Param limit query int false "Maximum entries"
// @Success 201 {object} response.Envelope
// @Router /exports/audit [post]
func (h *ExportHandler) AuditLog(c *gin.Context) {
	format, ok := formatFromQuery(c)
	if !ok {
		return
	}
	filter, err := auditFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.AuditLog(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download a rendered export
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, ticket, err := h.service.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	name := path.Base(ticket.Path)
	format, _ := export.ParseFormat(strings.TrimPrefix(path.Ext(name), "."))
	c.DataFromReader(http.StatusOK, info.Size(), format.ContentType(), file, map[string]string{
		"Content-Disposition": "attachment; filename=\"" + name + "\"",
	})
}

func formatFromQuery(c *gin.Context) (export.Format, bool) {
	format, ok := export.ParseFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return "", false
	}
	return format, true
}
