package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
	"github.com/noah-isme/overseas-crm/pkg/export"
	"github.com/noah-isme/overseas-crm/pkg/storage"
)

type exportArchive interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(exportID, relPath string) (string, time.Time, error)
	Verify(token string) (*storage.Ticket, error)
}

type paySheetReader interface {
	PaySheet(ctx context.Context, id string) (*models.PaySheet, error)
}

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) []models.AuditEntry
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ID           string        `json:"id"`
	RelativePath string        `json:"path"`
	Token        string        `json:"token"`
	URL          string        `json:"url"`
	Format       export.Format `json:"format"`
	ExpiresAt    time.Time     `json:"expiresAt"`
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	PaySheets paySheetReader
	Audit     auditReader
	Archive   exportArchive
	Signer    downloadSigner
	Config    ExportConfig
	Logger    *zap.Logger
	CSV       datasetRenderer
	PDF       datasetRenderer
}

// ExportService renders paysheets and the audit log into downloadable files.
type ExportService struct {
	paySheets paySheetReader
	audit     auditReader
	archive   exportArchive
	signer    downloadSigner
	renderers map[export.Format]datasetRenderer
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	var csv, pdf datasetRenderer = params.CSV, params.PDF
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		paySheets: params.PaySheets,
		audit:     params.Audit,
		archive:   params.Archive,
		signer:    params.Signer,
		renderers: map[export.Format]datasetRenderer{export.FormatCSV: csv, export.FormatPDF: pdf},
		logger:    logger,
		cfg:       cfg,
		now:       utcNow,
	}
}

// PaySheet renders one paysheet with a total footer.
func (s *ExportService) PaySheet(ctx context.Context, id string, format export.Format) (*ExportResult, error) {
	sheet, err := s.paySheets.PaySheet(ctx, id)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Title:   fmt.Sprintf("Paysheet %s (%s)", sheet.Month, sheet.Status),
		Headers: []string{"Employee", "Key", "Base", "Allowances", "Deductions", "Net"},
		Rows:    make([]map[string]string, 0, len(sheet.Items)),
		Footer:  []string{fmt.Sprintf("Total net: %s", money(sheet.Total()))},
	}
	for _, item := range sheet.Items {
		data.Rows = append(data.Rows, map[string]string{
			"Employee":   item.Employee,
			"Key":        item.EmployeeKey,
			"Base":       money(item.Base),
			"Allowances": money(item.Allowances),
			"Deductions": money(item.Deductions),
			"Net":        money(item.Net),
		})
	}
	return s.render(data, "paysheet_"+sheet.Month, format)
}

// AuditLog renders audit entries, newest first.
func (s *ExportService) AuditLog(ctx context.Context, filter models.AuditFilter, format export.Format) (*ExportResult, error) {
	entries := s.audit.List(ctx, filter)
	data := export.Dataset{
		Title:   "Audit log",
		Headers: []string{"Timestamp", "Actor", "Action", "Details"},
		Rows:    make([]map[string]string, 0, len(entries)),
		Footer:  []string{fmt.Sprintf("%d entries, generated %s", len(entries), s.now().Format(time.RFC3339))},
	}
	for _, entry := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"Timestamp": entry.Timestamp.UTC().Format(time.RFC3339),
			"Actor":     entry.ActorName,
			"Action":    entry.Action,
			"Details":   formatDetails(entry.Details),
		})
	}
	return s.render(data, "audit", format)
}

// Resolve validates a download token and opens the file it names.
func (s *ExportService) Resolve(token string) (*os.File, *storage.Ticket, error) {
	ticket, err := s.signer.Verify(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid or expired download link")
	}
	file, err := s.archive.Open(ticket.Path)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, ticket, nil
}

// Cleanup removes exports older than ttl, or the configured result TTL.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.archive.CleanupOlderThan(ttl)
}

func (s *ExportService) render(data export.Dataset, stem string, format export.Format) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	id := uuid.NewString()
	name := fmt.Sprintf("%s_%s_%s.%s", sanitizeFilename(stem), s.now().Format("20060102_150405"), id[:8], format)
	relPath, err := s.archive.Save(name, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Sign(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("export rendered", zap.String("path", relPath), zap.String("format", string(format)), zap.Int("rows", len(data.Rows)))
	return &ExportResult{
		ID:           id,
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/download/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDetails(details map[string]interface{}) string {
	parts := make([]string, 0, len(details))
	for _, k := range keys(details) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
