package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/repository"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

func TestApplicationServiceScopedCRUD(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	users := repository.NewUserRepository(store, nil)
	admin := sessionFor(seedUser(t, users, "Ada", "admin@overseas.test", "secret123", access.RoleAdmin))
	counselor := sessionFor(seedUser(t, users, "Cody", "cody@overseas.test", "secret123", access.RoleCounselor))
	cache := &fakeInvalidator{}
	svc := NewApplicationService(repository.NewApplicationRepository(store, nil), cache, nil, nil)

	own, err := svc.Create(ctx, counselor, ApplicationRequest{StudentName: "Lina", University: "Toronto", TotalSteps: 5})
	require.NoError(t, err)
	assert.Equal(t, counselor.Identity.ID, own.CounselorID)
	assert.Equal(t, "Draft", own.Status)

	foreign, err := svc.Create(ctx, admin, ApplicationRequest{StudentName: "Omar", University: "Leeds"})
	require.NoError(t, err)

	assert.Len(t, svc.List(ctx, counselor, ApplicationFilter{}), 1)
	assert.Len(t, svc.List(ctx, admin, ApplicationFilter{Search: "leeds"}), 1)

	_, err = svc.Get(ctx, counselor, foreign.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	step := 3
	updated, err := svc.Update(ctx, counselor, own.ID, UpdateApplicationRequest{CurrentStep: &step})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStep)
	assert.Equal(t, 5, updated.TotalSteps)

	_, err = svc.Create(ctx, admin, ApplicationRequest{University: "Nowhere"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.Delete(ctx, admin, foreign.ID))
	require.NoError(t, svc.Delete(ctx, admin, foreign.ID))
	assert.Len(t, cache.patterns, 5)
}

func TestUniversityServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewUniversityService(repository.NewUniversityRepository(newMemoryStore(), nil), nil, nil, nil)

	zurich, err := svc.Create(ctx, UniversityRequest{Name: "Zurich", Country: "Switzerland", IsPartner: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UniversityRequest{Name: "auckland", Country: "New Zealand"})
	require.NoError(t, err)

	all := svc.List(ctx, false)
	require.Len(t, all, 2)
	assert.Equal(t, "auckland", all[0].Name)
	assert.Len(t, svc.List(ctx, true), 1)

	partner := false
	updated, err := svc.Update(ctx, zurich.ID, UpdateUniversityRequest{IsPartner: &partner})
	require.NoError(t, err)
	assert.False(t, updated.IsPartner)
	assert.Equal(t, "Switzerland", updated.Country)

	_, err = svc.Create(ctx, UniversityRequest{Name: "Bad", Website: "not a url"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Update(ctx, "missing", UpdateUniversityRequest{IsPartner: &partner})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, zurich.ID))
	_, err = svc.Get(ctx, zurich.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEmployeeServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(repository.NewEmployeeRepository(newMemoryStore(), nil), nil, nil, nil)

	emp, err := svc.Create(ctx, EmployeeRequest{Name: "Alice", Email: "alice@overseas.test", Department: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "alice@overseas.test", emp.EmployeeKey())
	_, err = svc.Create(ctx, EmployeeRequest{Name: "Bob", Department: "Ops"})
	require.NoError(t, err)

	assert.Len(t, svc.List(ctx, ""), 2)
	assert.Len(t, svc.List(ctx, "sales"), 1)

	position := "Lead"
	updated, err := svc.Update(ctx, emp.ID, UpdateEmployeeRequest{Position: &position})
	require.NoError(t, err)
	assert.Equal(t, "Lead", updated.Position)

	_, err = svc.Create(ctx, EmployeeRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	require.NoError(t, svc.Delete(ctx, emp.ID))
	assert.Len(t, svc.List(ctx, ""), 1)
}
