package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/internal/repository"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

func TestFinanceServiceDueToPaid(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	users := repository.NewUserRepository(store, nil)
	students := repository.NewStudentRepository(store, nil)
	payments := repository.NewPaymentRepository(store, nil)
	audit := &fakeAudit{}
	accountant := sessionFor(seedUser(t, users, "Ana Accountant", "ana@overseas.test", "secret123", access.RoleAccountant))

	student := &models.Student{FullName: "Paying Student"}
	require.True(t, students.Create(ctx, student))

	svc := NewFinanceService(payments, students, audit, nil, nil)
	paidAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return paidAt }

	payment, err := svc.AddDue(ctx, accountant, student.ID, AddDueRequest{Amount: 5000, DueDate: "2024-06-30"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusDue, payment.Status)
	assert.Equal(t, float64(5000), audit.last().Details["amount"])

	paid, err := svc.MarkPaid(ctx, accountant, student.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paidAt.Equal(*paid.PaidAt))
	assert.Equal(t, float64(5000), paid.Amount)

	_, err = svc.MarkPaid(ctx, accountant, student.ID, payment.ID)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	overview := svc.Overview(ctx)
	require.Len(t, overview, 1)
	assert.Equal(t, "Paying Student", overview[0].StudentName)
	assert.Equal(t, float64(5000), overview[0].TotalPaid)
	assert.Zero(t, overview[0].TotalDue)

	assert.Equal(t, []string{models.AuditActionFinanceAddDue, models.AuditActionFinanceMarkPaid}, audit.actions())
}

func TestFinanceServiceRejections(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	students := repository.NewStudentRepository(store, nil)
	svc := NewFinanceService(repository.NewPaymentRepository(store, nil), students, nil, nil, nil)

	_, err := svc.AddDue(ctx, nil, "missing", AddDueRequest{Amount: 10})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	student := &models.Student{FullName: "S"}
	require.True(t, students.Create(ctx, student))
	_, err = svc.AddDue(ctx, nil, student.ID, AddDueRequest{Amount: 0})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.AddDue(ctx, nil, student.ID, AddDueRequest{Amount: 10, DueDate: "30/06/2024"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.MarkPaid(ctx, nil, student.ID, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, svc.ListByStudent(ctx, student.ID))
}

func TestFinanceServiceConcurrentMarkPaidSettlesOnce(t *testing.T) {
	ctx := context.Background()
	store := newSlowStore(time.Millisecond)
	users := repository.NewUserRepository(store, nil)
	students := repository.NewStudentRepository(store, nil)
	payments := repository.NewPaymentRepository(store, nil)
	audit := &fakeAudit{}
	accountant := sessionFor(seedUser(t, users, "Ana Accountant", "ana@overseas.test", "secret123", access.RoleAccountant))

	student := &models.Student{FullName: "Racing Student"}
	require.True(t, students.Create(ctx, student))
	svc := NewFinanceService(payments, students, audit, nil, nil)

	const trials = 10
	for trial := 0; trial < trials; trial++ {
		payment, err := svc.AddDue(ctx, accountant, student.ID, AddDueRequest{Amount: 5000})
		require.NoError(t, err)

		results := make([]error, 2)
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, results[i] = svc.MarkPaid(ctx, accountant, student.ID, payment.ID)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, appErrors.ErrConflict)
		}
		assert.Equal(t, 1, succeeded, "trial %d", trial)
	}

	marked := 0
	for _, action := range audit.actions() {
		if action == models.AuditActionFinanceMarkPaid {
			marked++
		}
	}
	assert.Equal(t, trials, marked)
	for _, p := range payments.ListByStudent(ctx, student.ID) {
		assert.Equal(t, models.PaymentStatusPaid, p.Status)
	}
}
