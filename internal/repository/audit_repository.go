package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// AuditRepository is the append-only audit trail.
type AuditRepository struct {
	entries *Collection[models.AuditEntry]
	now     func() time.Time
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *AuditRepository {
	opts = append([]CollectionOption{WithLogger(logger), WithoutTimestamps()}, opts...)
	return &AuditRepository{
		entries: NewCollection[models.AuditEntry](store, kvstore.KeyAuditLogs, opts...),
		now:     resolveOptions(opts).now,
	}
}

// Append assigns id and timestamp and stores the entry.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) bool {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	return r.entries.Add(ctx, entry)
}

// List returns entries in the order they were recorded.
func (r *AuditRepository) List(ctx context.Context) []models.AuditEntry {
	return r.entries.All(ctx)
}

// SetAll replaces the audit trail.
func (r *AuditRepository) SetAll(ctx context.Context, entries []models.AuditEntry) bool {
	return r.entries.SetAll(ctx, entries)
}
