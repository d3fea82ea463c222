package repository

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	"github.com/noah-isme/overseas-crm/pkg/kvstore"
)

// paymentBook is the persisted layout: student id -> payments in insertion order.
type paymentBook map[string][]models.Payment

// PaymentRepository manages student fee payments.
type PaymentRepository struct {
	store *kvstore.Store
	opts  collectionOptions
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(store *kvstore.Store, logger *zap.Logger, opts ...CollectionOption) *PaymentRepository {
	opts = append([]CollectionOption{WithLogger(logger)}, opts...)
	return &PaymentRepository{store: store, opts: resolveOptions(opts)}
}

// All returns the whole payment book keyed by student id.
func (r *PaymentRepository) All(ctx context.Context) map[string][]models.Payment {
	book := make(paymentBook)
	if !r.store.Get(ctx, kvstore.KeyPayments, &book) || book == nil {
		return map[string][]models.Payment{}
	}
	return book
}

// SetAll replaces the payment book.
func (r *PaymentRepository) SetAll(ctx context.Context, book map[string][]models.Payment) bool {
	lock := r.store.Locker(kvstore.KeyPayments)
	lock.Lock()
	defer lock.Unlock()
	return r.store.Set(ctx, kvstore.KeyPayments, book)
}

// ListByStudent returns the payments of one student in insertion order.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) []models.Payment {
	list := r.All(ctx)[studentID]
	if list == nil {
		return []models.Payment{}
	}
	return list
}

// Create appends a payment to the student's list. Status defaults to due.
func (r *PaymentRepository) Create(ctx context.Context, studentID string, payment *models.Payment) bool {
	lock := r.store.Locker(kvstore.KeyPayments)
	lock.Lock()
	defer lock.Unlock()

	book, ok := r.load(ctx)
	if !ok {
		return false
	}

	item := *payment
	item.ID = r.opts.newID()
	item.StudentID = studentID
	if item.Status == "" {
		item.Status = models.PaymentStatusDue
	}
	now := r.opts.now()
	item.CreatedAt = now
	item.UpdatedAt = now

	book[studentID] = append(book[studentID], item)
	if !r.store.Set(ctx, kvstore.KeyPayments, book) {
		return false
	}
	*payment = item
	return true
}

// Update merges patch into one payment of the student. Unknown student or
// payment ids report false and leave the book untouched.
func (r *PaymentRepository) Update(ctx context.Context, studentID, paymentID string, patch map[string]interface{}) (*models.Payment, bool) {
	updated, err := r.Mutate(ctx, studentID, paymentID, func(p *models.Payment) error {
		fields, err := toFields(*p)
		if err != nil {
			return err
		}
		for k, v := range patch {
			fields[k] = v
		}
		merged, _, err := fromFields[models.Payment](fields)
		if err != nil {
			r.opts.logger.Warn("rejected payment patch", zap.String("payment_id", paymentID), zap.Error(err))
			return err
		}
		*p = *merged
		return nil
	})
	return updated, err == nil
}

// Mutate applies fn to one payment while holding the payment book lock. The
// id, student and createdAt fields keep their stored values; updatedAt is
// refreshed. An error from fn aborts the write and is returned unchanged.
func (r *PaymentRepository) Mutate(ctx context.Context, studentID, paymentID string, fn func(*models.Payment) error) (*models.Payment, error) {
	lock := r.store.Locker(kvstore.KeyPayments)
	lock.Lock()
	defer lock.Unlock()

	book, ok := r.load(ctx)
	if !ok {
		return nil, ErrUnavailable
	}
	list := book[studentID]
	idx := -1
	for i, p := range list {
		if p.ID == paymentID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrRecordNotFound
	}

	stored := list[idx]
	item := stored
	if err := fn(&item); err != nil {
		return nil, err
	}
	item.ID = stored.ID
	item.StudentID = stored.StudentID
	item.CreatedAt = stored.CreatedAt
	item.UpdatedAt = r.opts.now()

	list[idx] = item
	book[studentID] = list
	if !r.store.Set(ctx, kvstore.KeyPayments, book) {
		return nil, ErrUnavailable
	}
	return &item, nil
}

func (r *PaymentRepository) load(ctx context.Context) (paymentBook, bool) {
	var raw map[string]json.RawMessage
	if _, ok := r.store.Read(ctx, kvstore.KeyPayments, &raw); !ok {
		return nil, false
	}
	book := make(paymentBook, len(raw))
	for studentID, entry := range raw {
		var list []models.Payment
		if err := json.Unmarshal(entry, &list); err != nil {
			r.opts.logger.Warn("undecodable payment list", zap.String("student_id", studentID), zap.Error(err))
			return nil, false
		}
		book[studentID] = list
	}
	return book, true
}
