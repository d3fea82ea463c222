package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/overseas-crm/internal/models"
	appErrors "github.com/noah-isme/overseas-crm/pkg/errors"
)

type paymentRepository interface {
	All(ctx context.Context) map[string][]models.Payment
	ListByStudent(ctx context.Context, studentID string) []models.Payment
	Create(ctx context.Context, studentID string, payment *models.Payment) bool
	Mutate(ctx context.Context, studentID, paymentID string, fn func(*models.Payment) error) (*models.Payment, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, bool)
}

// AddDueRequest describes a fee instalment to bill.
type AddDueRequest struct {
	Amount  float64 `json:"amount" validate:"gt=0"`
	DueDate string  `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Note    string  `json:"note"`
}

// FinanceService tracks student fee payments.
type FinanceService struct {
	payments  paymentRepository
	students  studentLookup
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFinanceService constructs a FinanceService.
func NewFinanceService(payments paymentRepository, students studentLookup, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *FinanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = nopAudit{}
	}
	return &FinanceService{payments: payments, students: students, audit: audit, validator: validate, logger: logger, now: utcNow}
}

// ListByStudent returns the student's payments in billing order.
func (s *FinanceService) ListByStudent(ctx context.Context, studentID string) []models.Payment {
	return s.payments.ListByStudent(ctx, studentID)
}

// AddDue bills a new instalment in the due state.
func (s *FinanceService) AddDue(ctx context.Context, session *models.Session, studentID string, req AddDueRequest) (*models.Payment, error) {
	if err := validate(s.validator, req, "invalid payment payload"); err != nil {
		return nil, err
	}
	if _, ok := s.students.FindByID(ctx, studentID); !ok {
		return nil, notFound("student not found")
	}
	payment := &models.Payment{
		Amount:  req.Amount,
		DueDate: req.DueDate,
		Note:    strings.TrimSpace(req.Note),
		Status:  models.PaymentStatusDue,
	}
	if !s.payments.Create(ctx, studentID, payment) {
		return nil, storageFailure("failed to add payment")
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionFinanceAddDue, map[string]interface{}{
		"studentId": studentID,
		"paymentId": payment.ID,
		"amount":    payment.Amount,
	})
	return payment, nil
}

// MarkPaid settles a due payment. The status check and the write share one
// locked cycle, so of two concurrent calls exactly one succeeds and paidAt is
// never overwritten.
func (s *FinanceService) MarkPaid(ctx context.Context, session *models.Session, studentID, paymentID string) (*models.Payment, error) {
	updated, err := s.payments.Mutate(ctx, studentID, paymentID, func(p *models.Payment) error {
		if p.Status == models.PaymentStatusPaid {
			return appErrors.Clone(appErrors.ErrConflict, "payment already marked paid")
		}
		paidAt := s.now()
		p.Status = models.PaymentStatusPaid
		p.PaidAt = &paidAt
		return nil
	})
	if err != nil {
		return nil, mutationError(err, "payment not found", "failed to mark payment paid")
	}
	s.audit.Record(ctx, session.Actor(), models.AuditActionFinanceMarkPaid, map[string]interface{}{
		"studentId": studentID,
		"paymentId": paymentID,
	})
	return updated, nil
}

// Overview summarises due and paid totals for every billed student.
func (s *FinanceService) Overview(ctx context.Context) []models.StudentPaymentSummary {
	book := s.payments.All(ctx)
	ids := make([]string, 0, len(book))
	for id := range book {
		ids = append(ids, id)
	}
	sortStrings(ids)

	summaries := make([]models.StudentPaymentSummary, 0, len(ids))
	for _, id := range ids {
		summary := models.StudentPaymentSummary{StudentID: id, Payments: book[id]}
		if student, ok := s.students.FindByID(ctx, id); ok {
			summary.StudentName = student.FullName
		}
		for _, p := range book[id] {
			if p.Status == models.PaymentStatusPaid {
				summary.TotalPaid += p.Amount
			} else {
				summary.TotalDue += p.Amount
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
