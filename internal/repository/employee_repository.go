package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// EmployeeRepository manages persistence for payroll employees.
type EmployeeRepository struct {
	employees *Collection[models.Employee]
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *EmployeeRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &EmployeeRepository{employees: NewCollection[models.Employee](store, kvstore.KeyEmployees, opts...)}
}

// List returns every employee in insertion order.
func (r *EmployeeRepository) List(ctx context.Context) []models.Employee {
	return r.employees.All(ctx)
}

// SetAll replaces the employees collection.
func (r *EmployeeRepository) SetAll(ctx context.Context, employees []models.Employee) bool {
	return r.employees.SetAll(ctx, employees)
}

// FindByID fetches an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, bool) {
	return r.employees.Get(ctx, id)
}

// Create inserts an employee.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) bool {
	return r.employees.Add(ctx, employee)
}

// Update merges patch into the stored employee.
func (r *EmployeeRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Employee, bool) {
	return r.employees.Update(ctx, id, patch)
}

// Delete removes an employee. Deleting an unknown id succeeds.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) bool {
	return r.employees.Delete(ctx, id)
}
