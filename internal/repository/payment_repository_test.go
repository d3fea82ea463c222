package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

func TestPaymentRepositoryDueThenPaid(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	now, advance := fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := NewPaymentRepository(store, nil, WithClock(now), WithIDGenerator(sequentialIDs()))

	payment := &models.Payment{Amount: 5000, DueDate: "2024-04-01"}
	require.True(t, repo.Create(ctx, "s1", payment))
	assert.Equal(t, "id-1", payment.ID)
	assert.Equal(t, models.PaymentStatusDue, payment.Status)
	assert.Equal(t, "s1", payment.StudentID)

	advance(time.Hour)
	paidAt := now()
	updated, ok := repo.Update(ctx, "s1", payment.ID, map[string]interface{}{"status": models.PaymentStatusPaid, "paidAt": paidAt})
	require.True(t, ok)
	assert.Equal(t, models.PaymentStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, paidAt.Equal(*updated.PaidAt))

	list := repo.ListByStudent(ctx, "s1")
	require.Len(t, list, 1)
	assert.Equal(t, 5000.0, list[0].Amount)
	assert.Equal(t, models.PaymentStatusPaid, list[0].Status)
	assert.NotNil(t, list[0].PaidAt)
}

func TestPaymentRepositoryUpdateUnknown(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	repo := NewPaymentRepository(store, nil)
	require.True(t, repo.Create(ctx, "s1", &models.Payment{Amount: 10}))
	before, err := driver.Get(ctx, kvstore.KeyPayments)
	require.NoError(t, err)

	_, ok := repo.Update(ctx, "s2", "x", map[string]interface{}{"status": "paid"})
	assert.False(t, ok)
	_, ok = repo.Update(ctx, "s1", "x", map[string]interface{}{"status": "paid"})
	assert.False(t, ok)

	after, err := driver.Get(ctx, kvstore.KeyPayments)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, repo.ListByStudent(ctx, "s2"))
}

func TestPaymentRepositoryKeepsPerStudentOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()
	repo := NewPaymentRepository(store, nil)

	for _, amount := range []float64{100, 200, 300} {
		require.True(t, repo.Create(ctx, "s1", &models.Payment{Amount: amount}))
	}
	require.True(t, repo.Create(ctx, "s2", &models.Payment{Amount: 50}))

	book := repo.All(ctx)
	require.Len(t, book, 2)
	require.Len(t, book["s1"], 3)
	assert.Equal(t, 100.0, book["s1"][0].Amount)
	assert.Equal(t, 300.0, book["s1"][2].Amount)
}

func TestPaymentRepositoryMutatePinsIdentity(t *testing.T) {
	ctx := context.Background()
	store, driver := newTestStore()
	now, advance := fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := NewPaymentRepository(store, nil, WithClock(now), WithIDGenerator(sequentialIDs()))
	payment := &models.Payment{Amount: 5000}
	require.True(t, repo.Create(ctx, "s1", payment))

	advance(time.Hour)
	updated, err := repo.Mutate(ctx, "s1", payment.ID, func(p *models.Payment) error {
		p.Status = models.PaymentStatusPaid
		p.ID = "other"
		p.StudentID = "s9"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, payment.ID, updated.ID)
	assert.Equal(t, "s1", updated.StudentID)
	assert.Equal(t, payment.CreatedAt, updated.CreatedAt)
	assert.Equal(t, payment.CreatedAt.Add(time.Hour), updated.UpdatedAt)

	before, err := driver.Get(ctx, kvstore.KeyPayments)
	require.NoError(t, err)
	settled := errors.New("already settled")
	_, err = repo.Mutate(ctx, "s1", payment.ID, func(*models.Payment) error { return settled })
	assert.ErrorIs(t, err, settled)
	_, err = repo.Mutate(ctx, "s1", "missing", func(*models.Payment) error { return nil })
	assert.ErrorIs(t, err, ErrRecordNotFound)
	after, err := driver.Get(ctx, kvstore.KeyPayments)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
