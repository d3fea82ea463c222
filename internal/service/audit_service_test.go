package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
)

type failingAuditRepo struct {
	appends int
}

func (f *failingAuditRepo) Append(context.Context, *models.AuditEntry) bool {
	f.appends++
	return false
}

func (f *failingAuditRepo) List(context.Context) []models.AuditEntry {
	return nil
}

func TestAuditServiceRecordNeverPropagatesFailures(t *testing.T) {
	repo := &failingAuditRepo{}
	svc := NewAuditService(repo, NewMetricsService(), nil)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), models.Actor{ID: "u1", Name: "Ada"}, models.AuditActionLogin, nil)
	})
	assert.Equal(t, 1, repo.appends)
	assert.Empty(t, svc.List(context.Background(), models.AuditFilter{}))
}

func TestAuditServiceListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAuditRepository(newMemoryStore(), nil)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, action := range []string{models.AuditActionLogin, models.AuditActionStudentCreate, models.AuditActionLogout} {
		entry := &models.AuditEntry{ActorID: "u1", ActorName: "Ada", Action: action, Timestamp: base.Add(time.Duration(i) * time.Minute)}
		require.True(t, repo.Append(ctx, entry))
	}
	require.True(t, repo.Append(ctx, &models.AuditEntry{ActorID: "u2", Action: models.AuditActionLogin, Timestamp: base.Add(time.Minute)}))

	svc := NewAuditService(repo, nil, nil)
	all := svc.List(ctx, models.AuditFilter{})
	require.Len(t, all, 4)
	assert.Equal(t, models.AuditActionLogout, all[0].Action)
	assert.Equal(t, "u2", all[1].ActorID)
	assert.Equal(t, models.AuditActionStudentCreate, all[2].Action)
	assert.Equal(t, models.AuditActionLogin, all[3].Action)

	logins := svc.List(ctx, models.AuditFilter{Action: models.AuditActionLogin, Limit: 1})
	require.Len(t, logins, 1)
	assert.Equal(t, "u2", logins[0].ActorID)

	assert.Len(t, svc.List(ctx, models.AuditFilter{ActorID: "u1"}), 3)

	svc.Record(ctx, models.Actor{ID: "u3", Name: "Zed"}, models.AuditActionSystemReset, map[string]interface{}{"k": "v"})
	newest := svc.List(ctx, models.AuditFilter{ActorID: "u3"})
	require.Len(t, newest, 1)
	assert.NotEmpty(t, newest[0].ID)
	assert.False(t, newest[0].Timestamp.IsZero())
	assert.Equal(t, "v", newest[0].Details["k"])
}
