package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// ApplicationRepository manages persistence for university applications.
type ApplicationRepository struct {
	applications *Collection[models.Application]
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *ApplicationRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &ApplicationRepository{applications: NewCollection[models.Application](store, kvstore.KeyApplications, opts...)}
}

// List returns every application in insertion order.
func (r *ApplicationRepository) List(ctx context.Context) []models.Application {
	return r.applications.All(ctx)
}

// ListByCounselor returns the applications owned by a counselor.
func (r *ApplicationRepository) ListByCounselor(ctx context.Context, counselorID string) []models.Application {
	return r.applications.Filter(ctx, func(a models.Application) bool { return a.CounselorID == counselorID })
}

// SetAll replaces the applications collection.
func (r *ApplicationRepository) SetAll(ctx context.Context, applications []models.Application) bool {
	return r.applications.SetAll(ctx, applications)
}

// FindByID fetches an application by id.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, bool) {
	return r.applications.Get(ctx, id)
}

// Create inserts an application.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) bool {
	return r.applications.Add(ctx, application)
}

// Update merges patch into the stored application.
func (r *ApplicationRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.Application, bool) {
	return r.applications.Update(ctx, id, patch)
}

// Delete removes an application. Deleting an unknown id succeeds.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) bool {
	return r.applications.Delete(ctx, id)
}
