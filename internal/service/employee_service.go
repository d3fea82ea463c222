package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
)

type employeeRepository interface {
	List(ctx context.Context) []models.Employee
	FindByID(ctx context.Context, id string) (*models.Employee, bool)
	Create(ctx context.Context, employee *models.Employee) bool
	Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Employee, bool)
	Delete(ctx context.Context, id string) bool
}

// EmployeeRequest holds payload for creating employees.
type EmployeeRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// UpdateEmployeeRequest carries a partial employee update.
type UpdateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department"`
	Position   *string `json:"position"`
}

// EmployeeService manages payroll employees.
type EmployeeService struct {
	repo      employeeRepository
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns employees, optionally restricted to one department.
func (s *EmployeeService) List(ctx context.Context, department string) []models.Employee {
	all := s.repo.List(ctx)
	if department == "" {
		return all
	}
	result := make([]models.Employee, 0, len(all))
	for _, e := range all {
		if strings.EqualFold(e.Department, department) {
			result = append(result, e)
		}
	}
	return result
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	e, ok := s.repo.FindByID(ctx, id)
	if !ok {
		return nil, notFound("employee not found")
	}
	return e, nil
}

func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*models.Employee, error) {
	if err := validate(s.validator, req, "invalid employee payload"); err != nil {
		return nil, err
	}
	e := &models.Employee{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Department: req.Department,
		Position:   req.Position,
	}
	if !s.repo.Create(ctx, e) {
		return nil, storageFailure("failed to create employee")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := validate(s.validator, req, "invalid employee payload"); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	patch := patchFromFields(map[string]interface{}{
		"name":       req.Name,
		"email":      req.Email,
		"department": req.Department,
		"position":   req.Position,
	})
	updated, ok := s.repo.Update(ctx, id, patch)
	if !ok {
		return nil, storageFailure("failed to update employee")
	}
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if !s.repo.Delete(ctx, id) {
		return storageFailure("failed to delete employee")
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	return nil
}
