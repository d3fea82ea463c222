package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// PayDetailRepository stores one pay detail per employee key.
type PayDetailRepository struct {
	details *Collection[models.PayDetail]
	now     func() time.Time
}

// NewPayDetailRepository constructs a PayDetailRepository.
func NewPayDetailRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *PayDetailRepository {
	opts = append([]CollectionOption{WithLogger(logger), WithKeyField("employeeKey"), WithoutTimestamps()}, opts...)
	return &PayDetailRepository{
		details: NewCollection[models.PayDetail](store, kvstore.KeyPayDetails, opts...),
		now:     resolveOptions(opts).now,
	}
}

// List returns every pay detail.
func (r *PayDetailRepository) List(ctx context.Context) []models.PayDetail {
	return r.details.All(ctx)
}

// SetAll replaces the pay details collection.
func (r *PayDetailRepository) SetAll(ctx context.Context, details []models.PayDetail) bool {
	return r.details.SetAll(ctx, details)
}

// FindByEmployeeKey returns the pay detail of an employee key.
func (r *PayDetailRepository) FindByEmployeeKey(ctx context.Context, key string) (*models.PayDetail, bool) {
	return r.details.Get(ctx, key)
}

// Upsert replaces the whole record for key. A zero effectiveFrom becomes now.
func (r *PayDetailRepository) Upsert(ctx context.Context, key string, detail models.PayDetail) (*models.PayDetail, bool) {
	detail.EmployeeKey = key
	if detail.EffectiveFrom.IsZero() {
		detail.EffectiveFrom = r.now()
	}
	if !r.details.Put(ctx, detail) {
		return nil, false
	}
	return &detail, true
}
