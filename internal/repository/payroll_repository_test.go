package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/models"
)

func TestPayDetailRepositoryUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, _ := fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	repo := NewPayDetailRepository(store, nil, WithClock(now))

	first, ok := repo.Upsert(ctx, "jo@overseas.local", models.PayDetail{Base: 1000, Allowances: 200})
	require.True(t, ok)
	assert.Equal(t, now(), first.EffectiveFrom)

	_, ok = repo.Upsert(ctx, "jo@overseas.local", models.PayDetail{Base: 1500})
	require.True(t, ok)

	got, ok := repo.FindByEmployeeKey(ctx, "jo@overseas.local")
	require.True(t, ok)
	assert.Equal(t, 1500.0, got.Base)
	assert.Zero(t, got.Allowances)
	assert.Len(t, repo.List(ctx), 1)
}

func TestPaySheetRepositoryCreateDefaultsToDraft(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	repo := NewPaySheetRepository(store, nil)

	sheet := &models.PaySheet{Month: "2024-06"}
	require.True(t, repo.Create(ctx, sheet))
	assert.Equal(t, models.PaySheetStatusDraft, sheet.Status)

	updated, ok := repo.Update(ctx, sheet.ID, map[string]interface{}{"status": models.PaySheetStatusApproved})
	require.True(t, ok)
	assert.Equal(t, models.PaySheetStatusApproved, updated.Status)
	assert.Equal(t, "2024-06", updated.Month)
}

func TestAuditRepositoryAppendStampsEntry(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, _ := fixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := NewAuditRepository(store, nil, WithClock(now))

	entry := &models.AuditEntry{ActorID: "u1", ActorName: "Ann", Action: models.AuditActionLogin}
	require.True(t, repo.Append(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, now(), entry.Timestamp)
	assert.Len(t, repo.List(ctx), 1)
}

func TestSessionAndAppStateRepositories(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	sessions := NewSessionRepository(store, nil)
	state := NewAppStateRepository(store)

	require.True(t, sessions.Put(ctx, models.Session{ID: "s1", Identity: models.Identity{ID: "u1"}}))
	got, ok := sessions.Get(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "u1", got.Identity.ID)
	assert.True(t, sessions.Delete(ctx, "s1"))
	assert.True(t, sessions.Delete(ctx, "s1"))

	assert.False(t, state.IsInitialized(ctx))
	assert.Zero(t, state.SchemaVersion(ctx))
	require.True(t, state.SetInitialized(ctx))
	require.True(t, state.SetSchemaVersion(ctx, 2))
	assert.True(t, state.IsInitialized(ctx))
	assert.Equal(t, 2, state.SchemaVersion(ctx))

	require.True(t, state.Reset(ctx))
	assert.False(t, state.IsInitialized(ctx))
}
