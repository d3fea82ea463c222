package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// SessionRepository keeps active sessions under the current-user key, indexed
// by session id.
type SessionRepository struct {
	sessions *Collection[models.Session]
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(store *kvstore.Store, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{sessions: NewCollection[models.Session](store, kvstore.KeyCurrentUser, WithLogger(logger), WithoutTimestamps())}
}

// Put stores or replaces a session.
func (r *SessionRepository) Put(ctx context.Context, session models.Session) bool {
	return r.sessions.Put(ctx, session)
}

// Get fetches a session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, bool) {
	return r.sessions.Get(ctx, id)
}

// List returns every stored session.
func (r *SessionRepository) List(ctx context.Context) []models.Session {
	return r.sessions.All(ctx)
}

// Delete removes a session. Removing an unknown id succeeds.
func (r *SessionRepository) Delete(ctx context.Context, id string) bool {
	return r.sessions.Delete(ctx, id)
}

// Refresh replaces the identity carried by a stored session. A session removed
// in the meantime stays removed and reports false.
func (r *SessionRepository) Refresh(ctx context.Context, id string, identity models.Identity) (*models.Session, bool) {
	updated, err := r.sessions.Mutate(ctx, id, func(s *models.Session) error {
		s.Identity = identity
		return nil
	})
	return updated, err == nil
}

// PruneExpired removes every session that expired before now.
func (r *SessionRepository) PruneExpired(ctx context.Context, now time.Time) (int, bool) {
	return r.sessions.RemoveWhere(ctx, func(s models.Session) bool { return s.Expired(now) })
}

// Clear drops every session.
func (r *SessionRepository) Clear(ctx context.Context) bool {
	return r.sessions.Clear(ctx)
}
