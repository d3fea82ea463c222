package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

func newUserFixture(t *testing.T) (*UserService, *repository.UserRepository, *fakeAudit, models.Actor) {
	t.Helper()
	repo := repository.NewUserRepository(newMemoryStore(), nil)
	admin := seedUser(t, repo, "Ada Admin", "admin@overseas.test", "secret123", access.RoleAdmin)
	audit := &fakeAudit{}
	return NewUserService(repo, audit, nil, nil), repo, audit, sessionFor(admin).Actor()
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	svc, repo, audit, actor := newUserFixture(t)
	ctx := context.Background()

	identity, err := svc.Create(ctx, actor, CreateUserRequest{
		Name:     "Cody Counselor",
		Email:    "cody@overseas.test",
		Password: "secret123",
		Role:     access.RoleCounselor,
	})
	require.NoError(t, err)
	assert.True(t, identity.IsActive)
	assert.Equal(t, access.RoleCounselor, identity.Role)

	stored, ok := repo.FindByID(ctx, identity.ID)
	require.True(t, ok)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
	assert.Equal(t, models.AuditActionUserCreate, audit.last().Action)
}

func TestUserServiceCreateRejections(t *testing.T) {
	svc, _, _, actor := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, actor, CreateUserRequest{Name: "X", Email: "x@overseas.test", Password: "secret123", Role: "wizard"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(ctx, actor, CreateUserRequest{Name: "X", Email: "admin@overseas.test", Password: "secret123", Role: access.RoleHead})
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Create(ctx, actor, CreateUserRequest{Name: "X", Email: "x@overseas.test", Password: "123", Role: access.RoleHead})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	svc, repo, _, actor := newUserFixture(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, actor, CreateUserRequest{Name: "Sam", Email: "sam@overseas.test", Password: "secret123", Role: access.RoleReceptionist})
	require.NoError(t, err)

	role := access.RoleCustomerSupport
	active := false
	updated, err := svc.Update(ctx, actor, created.ID, UpdateUserRequest{Role: &role, IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, access.RoleCustomerSupport, updated.Role)
	assert.False(t, updated.IsActive)
	assert.Empty(t, svc.SupportAgents(ctx))

	_, err = svc.Update(ctx, actor, "missing", UpdateUserRequest{IsActive: &active})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, actor, actor.ID), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, actor, created.ID))
	_, ok := repo.FindByID(ctx, created.ID)
	assert.False(t, ok)
}

func TestUserServiceListFilters(t *testing.T) {
	svc, _, _, actor := newUserFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, actor, CreateUserRequest{Name: "Sam Support", Email: "sam@overseas.test", Password: "secret123", Role: access.RoleCustomerSupport})
	require.NoError(t, err)

	role := access.RoleCustomerSupport
	assert.Len(t, svc.List(ctx, models.UserFilter{Role: &role}), 1)
	assert.Len(t, svc.List(ctx, models.UserFilter{Search: "ADA"}), 1)
	assert.Len(t, svc.List(ctx, models.UserFilter{}), 2)
	assert.Len(t, svc.SupportAgents(ctx), 1)
}
