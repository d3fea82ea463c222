package models

import "time"

// Employee is a payroll subject. It is separate from User: not every employee
// signs in.
type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	Position   string    `json:"position,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EmployeeKey is the payroll key of the employee: email when present, name otherwise.
func (e Employee) EmployeeKey() string {
	if e.Email != "" {
		return e.Email
	}
	return e.Name
}
