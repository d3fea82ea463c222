package models

import "time"

// Application statuses that close an application.
const (
	ApplicationStatusEnrolled  = "Enrolled"
	ApplicationStatusRejected  = "Rejected"
	ApplicationStatusWithdrawn = "Withdrawn"
)

// Application tracks one student's application to a university programme.
type Application struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId,omitempty"`
	StudentName string    `json:"studentName"`
	University  string    `json:"university"`
	Program     string    `json:"program,omitempty"`
	Status      string    `json:"status"`
	CurrentStep int       `json:"currentStep"`
	TotalSteps  int       `json:"totalSteps"`
	CounselorID string    `json:"counselorId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Closed reports whether the application reached a terminal status.
func (a Application) Closed() bool {
	switch a.Status {
	case ApplicationStatusEnrolled, ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}
