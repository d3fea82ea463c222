package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

func TestBootstrapServiceInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	users := repository.NewUserRepository(store, nil)
	state := repository.NewAppStateRepository(store)
	seed := SeedAccount{Name: "Root", Email: "root@overseas.test", Password: "changeme"}
	svc := NewBootstrapService(state, users, nil, nil, seed, nil)

	require.NoError(t, svc.Initialize(ctx))
	require.NoError(t, svc.Initialize(ctx))

	all := users.List(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, access.RoleSuperUser, all[0].Role)
	assert.True(t, all[0].IsActive)
	assert.True(t, state.IsInitialized(ctx))
	assert.Equal(t, SchemaVersion, state.SchemaVersion(ctx))

	auth := NewAuthService(users, repository.NewSessionRepository(store, nil), nil, nil, nil, nil, AuthConfig{Secret: "s"})
	_, err := auth.Login(ctx, models.LoginRequest{Email: "root@overseas.test", Password: "changeme"})
	require.NoError(t, err)
}

func TestBootstrapServiceUpgradesSchemaVersion(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	state := repository.NewAppStateRepository(store)
	require.True(t, state.SetInitialized(ctx))
	require.True(t, state.SetSchemaVersion(ctx, 1))

	svc := NewBootstrapService(state, repository.NewUserRepository(store, nil), nil, nil, SeedAccount{}, nil)
	require.NoError(t, svc.Initialize(ctx))
	assert.Equal(t, SchemaVersion, state.SchemaVersion(ctx))
}

func TestBootstrapServiceRequiresSeedCredentials(t *testing.T) {
	store := newMemoryStore()
	svc := NewBootstrapService(repository.NewAppStateRepository(store), repository.NewUserRepository(store, nil), nil, nil, SeedAccount{Email: "root@overseas.test"}, nil)
	assert.ErrorIs(t, svc.Initialize(context.Background()), appErrors.ErrValidation)
}

func TestBootstrapServiceReset(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	users := repository.NewUserRepository(store, nil)
	students := repository.NewStudentRepository(store, nil)
	audit := &fakeAudit{}
	cache := &fakeInvalidator{}
	svc := NewBootstrapService(repository.NewAppStateRepository(store), users, audit, cache, SeedAccount{Email: "root@overseas.test", Password: "changeme"}, nil)
	require.NoError(t, svc.Initialize(ctx))
	require.True(t, students.Create(ctx, &models.Student{FullName: "Wiped"}))
	seedUser(t, users, "Extra", "extra@overseas.test", "secret123", access.RoleHead)

	require.NoError(t, svc.Reset(ctx, models.Actor{ID: "root"}))
	assert.Empty(t, students.List(ctx))
	require.Len(t, users.List(ctx), 1)
	assert.Equal(t, "root@overseas.test", users.List(ctx)[0].Email)
	assert.Equal(t, []string{models.AuditActionSystemReset}, audit.actions())
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}
