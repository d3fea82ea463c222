package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type payDetailRepository interface {
	List(ctx context.Context) []models.PayDetail
	FindByEmployeeKey(ctx context.Context, key string) (*models.PayDetail, bool)
	Upsert(ctx context.Context, key string, detail models.PayDetail) (*models.PayDetail, bool)
}

type paySheetRepository interface {
	List(ctx context.Context) []models.PaySheet
	FindByID(ctx context.Context, id string) (*models.PaySheet, bool)
	Create(ctx context.Context, sheet *models.PaySheet) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.PaySheet, bool)
}

type employeeLister interface {
	List(ctx context.Context) []models.Employee
}

// PayDetailRequest replaces an employee's compensation.
type PayDetailRequest struct {
	Base          float64    `json:"base" validate:"gte=0"`
	Allowances    float64    `json:"allowances" validate:"gte=0"`
	Deductions    float64    `json:"deductions" validate:"gte=0"`
	EffectiveFrom *time.Time `json:"effectiveFrom"`
}

// GeneratePaySheetRequest names the month to snapshot.
type GeneratePaySheetRequest struct {
	Month string `json:"month" validate:"required,datetime=2006-01"`
}

// PayrollService manages pay details and monthly paysheets.
type PayrollService struct {
	details   payDetailRepository
	sheets    paySheetRepository
	employees employeeLister
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPayrollService constructs a PayrollService.
func NewPayrollService(details payDetailRepository, sheets paySheetRepository, employees employeeLister, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *PayrollService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &PayrollService{details: details, sheets: sheets, employees: employees, audit: audit, validator: validate, logger: logger}
}

// PayDetails pairs every employee with their current pay detail.
func (s *PayrollService) PayDetails(ctx context.Context) []models.EmployeePay {
	employees := s.employees.List(ctx)
	result := make([]models.EmployeePay, 0, len(employees))
	for _, emp := range employees {
		key := emp.EmployeeKey()
		entry := models.EmployeePay{Employee: emp, EmployeeKey: key}
		if detail, ok := s.details.FindByEmployeeKey(ctx, key); ok {
			entry.Pay = detail
		}
		result = append(result, entry)
	}
	return result
}

// UpsertPayDetail replaces the whole pay record for employeeKey.
func (s *PayrollService) UpsertPayDetail(ctx context.Context, session *models.Session, employeeKey string, req PayDetailRequest) (*models.PayDetail, error) {
	if employeeKey == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee key is required")
	}
	if err := validate(s.validator, req, "invalid pay detail payload"); err != nil {
		return nil, err
	}
	detail := models.PayDetail{
		Base:       req.Base,
		Allowances: req.Allowances,
		Deductions: req.Deductions,
	}
	if req.EffectiveFrom != nil {
		detail.EffectiveFrom = req.EffectiveFrom.UTC()
	}
	saved, ok := s.details.Upsert(ctx, employeeKey, detail)
	if !ok {
		return nil, storageFailure("failed to save pay detail")
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionPayDetailUpsert, map[string]interface{}{
		"employeeKey": employeeKey,
		"net":         saved.Net(),
	})
	return saved, nil
}

// PaySheets lists generated paysheets in creation order.
func (s *PayrollService) PaySheets(ctx context.Context) []models.PaySheet {
	return s.sheets.List(ctx)
}

// PaySheet returns one paysheet.
func (s *PayrollService) PaySheet(ctx context.Context, id string) (*models.PaySheet, error) {
	sheet, ok := s.sheets.FindByID(ctx, id)
	if !ok {
		return nil, notFound("paysheet not found")
	}
	return sheet, nil
}

// Generate snapshots current pay for every employee into a draft paysheet.
// Employees without a pay detail contribute zero lines.
func (s *PayrollService) Generate(ctx context.Context, session *models.Session, req GeneratePaySheetRequest) (*models.PaySheet, error) {
	if err := validate(s.validator, req, "month must be formatted YYYY-MM"); err != nil {
		return nil, err
	}
	items := make([]models.PaySheetItem, 0)
	for _, entry := range s.PayDetails(ctx) {
		item := models.PaySheetItem{Employee: entry.Employee.Name, EmployeeKey: entry.EmployeeKey}
		if entry.Pay != nil {
			item.Base = entry.Pay.Base
			item.Allowances = entry.Pay.Allowances
			item.Deductions = entry.Pay.Deductions
			item.Net = entry.Pay.Net()
		}
		items = append(items, item)
	}

	sheet := &models.PaySheet{Month: req.Month, Items: items, Status: models.PaySheetStatusDraft}
	if !s.sheets.Create(ctx, sheet) {
		return nil, storageFailure("failed to generate paysheet")
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionPaysheetGenerate, map[string]interface{}{
		"paySheetId": sheet.ID,
		"month":      sheet.Month,
		"total":      sheet.Total(),
	})
	return sheet, nil
}

// Approve marks a paysheet approved.
func (s *PayrollService) Approve(ctx context.Context, session *models.Session, id string) (*models.PaySheet, error) {
	return s.transition(ctx, session, id, models.PaySheetStatusApproved, models.AuditActionPaysheetApprove)
}

// Revert returns a paysheet to draft.
func (s *PayrollService) Revert(ctx context.Context, session *models.Session, id string) (*models.PaySheet, error) {
	return s.transition(ctx, session, id, models.PaySheetStatusDraft, models.AuditActionPaysheetRevert)
}

func (s *PayrollService) transition(ctx context.Context, session *models.Session, id, status, action string) (*models.PaySheet, error) {
	if _, err := s.PaySheet(ctx, id); err != nil {
		return nil, err
	}
	updated, ok := s.sheets.Update(ctx, id, map[string]interface{}{"status": status})
	if !ok {
		return nil, storageFailure("failed to update paysheet")
	}
	s.audit.Record(ctx, session.Actor(), action, map[string]interface{}{"paySheetId": id, "month": updated.Month})
	return updated, nil
}
