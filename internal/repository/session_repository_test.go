package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

func TestSessionRepositoryPruneExpired(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	sessions := NewSessionRepository(store, nil)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, sessions.Put(ctx, models.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.True(t, sessions.Put(ctx, models.Session{ID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.True(t, sessions.Put(ctx, models.Session{ID: "older", ExpiresAt: now.Add(-time.Hour)}))

	pruned, ok := sessions.PruneExpired(ctx, now)
	require.True(t, ok)
	assert.Equal(t, 2, pruned)
	remaining := sessions.List(ctx)
	require.Len(t, remaining, 1)
	assert.Equal(t, "live", remaining[0].ID)
}

func TestSessionRepositoryRefresh(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	sessions := NewSessionRepository(store, nil)
	require.True(t, sessions.Put(ctx, models.Session{ID: "a", Identity: models.Identity{ID: "u1", Role: access.RoleAdmin}}))
	require.True(t, sessions.Put(ctx, models.Session{ID: "b", Identity: models.Identity{ID: "u1", Role: access.RoleAdmin}}))
	require.True(t, sessions.Put(ctx, models.Session{ID: "c", Identity: models.Identity{ID: "u2", Role: access.RoleCounselor}}))

	refreshed, ok := sessions.Refresh(ctx, "a", models.Identity{ID: "u1", Role: access.RoleEmployee})
	require.True(t, ok)
	assert.Equal(t, "a", refreshed.ID)
	assert.Equal(t, access.RoleEmployee, refreshed.Identity.Role)

	_, ok = sessions.Refresh(ctx, "gone", models.Identity{ID: "u1"})
	assert.False(t, ok)
	_, ok = sessions.Get(ctx, "gone")
	assert.False(t, ok)

	untouched, ok := sessions.Get(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, access.RoleAdmin, untouched.Identity.Role)
}

func TestAppStateResetWaitsForInFlightWrites(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	state := NewAppStateRepository(store)
	students := NewCollection[note](store, kvstore.KeyStudents)
	require.True(t, students.Add(ctx, &note{Title: "before reset"}))

	lock := store.Locker(kvstore.KeyStudents)
	lock.Lock()
	done := make(chan bool, 1)
	go func() { done <- state.Reset(ctx) }()

	select {
	case <-done:
		t.Fatal("reset finished while a write cycle held the students lock")
	case <-time.After(30 * time.Millisecond):
	}
	require.True(t, store.Set(ctx, kvstore.KeyStudents, map[string]string{"stale": "write"}))
	lock.Unlock()

	require.True(t, <-done)
	assert.Empty(t, students.All(ctx))
	var leftover map[string]string
	assert.False(t, store.Get(ctx, kvstore.KeyStudents, &leftover))
}
