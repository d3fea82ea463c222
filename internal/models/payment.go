package models

import "time"

// Payment statuses. The only transition is due -> paid.
const (
	PaymentStatusDue  = "due"
	PaymentStatusPaid = "paid"
)

// Payment is one fee instalment owed by a student.
type Payment struct {
	ID        string     `json:"id"`
	StudentID string     `json:"studentId"`
	Amount    float64    `json:"amount"`
	DueDate   string     `json:"dueDate"`
	Status    string     `json:"status"`
	Note      string     `json:"note,omitempty"`
	PaidAt    *time.Time `json:"paidAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// StudentPaymentSummary aggregates a student's payments.
type StudentPaymentSummary struct {
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Payments    []Payment `json:"payments"`
	TotalDue    float64   `json:"totalDue"`
	TotalPaid   float64   `json:"totalPaid"`
}
