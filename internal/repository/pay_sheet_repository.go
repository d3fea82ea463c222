package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// PaySheetRepository stores generated paysheets.
type PaySheetRepository struct {
	sheets *Collection[models.PaySheet]
}

// NewPaySheetRepository constructs a PaySheetRepository.
func NewPaySheetRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *PaySheetRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &PaySheetRepository{sheets: NewCollection[models.PaySheet](store, kvstore.KeyPaySheets, opts...)}
}

func (r *PaySheetRepository) List(ctx context.Context) []models.PaySheet {
	return r.sheets.All(ctx)
}

func (r *PaySheetRepository) SetAll(ctx context.Context, sheets []models.PaySheet) bool {
	return r.sheets.SetAll(ctx, sheets)
}

func (r *PaySheetRepository) FindByID(ctx context.Context, id string) (*models.PaySheet, bool) {
	return r.sheets.Get(ctx, id)
}

// Create stores a sheet. Status defaults to draft.
func (r *PaySheetRepository) Create(ctx context.Context, sheet *models.PaySheet) bool {
	if sheet.Status == "" {
		sheet.Status = models.PaySheetStatusDraft
	}
	if sheet.Items == nil {
		sheet.Items = []models.PaySheetItem{}
	}
	return r.sheets.Add(ctx, sheet)
}

func (r *PaySheetRepository) Update(ctx context.Context, id string, patch map[string]interface{}) (*models.PaySheet, bool) {
	return r.sheets.Update(ctx, id, patch)
}
