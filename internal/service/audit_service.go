package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
)

type auditRepository interface {
	Append(ctx context.Context, entry *models.AuditEntry) bool
	List(ctx context.Context) []models.AuditEntry
}

// auditRecorder is the slice of AuditService other services depend on.
type auditRecorder interface {
	Record(ctx context.Context, actor models.Actor, action string, details map[string]interface{})
}

// AuditService writes and reads the audit trail.
type AuditService struct {
	repo    auditRepository
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, metrics: metrics, logger: logger}
}

// Record appends an entry. A failed write is logged and counted; the caller's
// operation has already succeeded and is not rolled back.
func (s *AuditService) Record(ctx context.Context, actor models.Actor, action string, details map[string]interface{}) {
	entry := &models.AuditEntry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
	}
	ok := s.repo.Append(ctx, entry)
	s.metrics.RecordAudit(action, ok)
	if !ok {
		s.logger.Warn("failed to record audit entry", zap.String("action", action), zap.String("actor_id", actor.ID))
	}
}

// List returns entries newest first, optionally filtered and limited.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) []models.AuditEntry {
	entries := s.repo.List(ctx)
	filtered := make([]models.AuditEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && entry.ActorID != filter.ActorID {
			continue
		}
		filtered = append(filtered, entry)
	}
	// Stored order is append order; reverse it before the stable timestamp sort
	// so entries sharing a timestamp also come out newest first.
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})
	if filter.Limit > 0 && len(filtered) > filter.Limit {
		filtered = filtered[:filter.Limit]
	}
	return filtered
}
