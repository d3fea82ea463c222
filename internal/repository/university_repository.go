package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// UniversityRepository manages persistence for destination universities.
type UniversityRepository struct {
	universities *Collection[models.University]
}

// NewUniversityRepository constructs a UniversityRepository.
func NewUniversityRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *UniversityRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &UniversityRepository{universities: NewCollection[models.University](store, kvstore.KeyUniversities, opts...)}
}

func (r *UniversityRepository) List(ctx context.Context) []models.University {
	return r.universities.All(ctx)
}

func (r *UniversityRepository) SetAll(ctx context.Context, universities []models.University) bool {
	return r.universities.SetAll(ctx, universities)
}

func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, bool) {
	return r.universities.Get(ctx, id)
}

func (r *UniversityRepository) Create(ctx context.Context, university *models.University) bool {
	return r.universities.Add(ctx, university)
}

func (r *UniversityRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.University, bool) {
	return r.universities.Update(ctx, id, patch)
}

func (r *UniversityRepository) Delete(ctx context.Context, id string) bool {
	return r.universities.Delete(ctx, id)
}
