package models

import "time"

// Paysheet statuses. Approval is reversible.
const (
	PaySheetStatusDraft    = "draft"
	PaySheetStatusApproved = "approved"
)

// PayDetail is the current compensation of one employee key.
type PayDetail struct {
	EmployeeKey   string    `json:"employeeKey"`
	Base          float64   `json:"base"`
	Allowances    float64   `json:"allowances"`
	Deductions    float64   `json:"deductions"`
	EffectiveFrom time.Time `json:"effectiveFrom"`
}

// Net is base plus allowances minus deductions.
func (d PayDetail) Net() float64 {
	return d.Base + d.Allowances - d.Deductions
}

// PaySheetItem is one employee line of a generated paysheet.
type PaySheetItem struct {
	Employee    string  `json:"employee"`
	EmployeeKey string  `json:"employeeKey"`
	Base        float64 `json:"base"`
	Allowances  float64 `json:"allowances"`
	Deductions  float64 `json:"deductions"`
	Net         float64 `json:"net"`
}

// PaySheet is a point-in-time payroll snapshot for one month.
type PaySheet struct {
	ID        string         `json:"id"`
	Month     string         `json:"month"`
	Items     []PaySheetItem `json:"items"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Total sums the net pay of every item.
func (p PaySheet) Total() float64 {
	var total float64
	for _, item := range p.Items {
		total += item.Net
	}
	return total
}

// EmployeePay pairs an employee with their current pay detail, if any.
type EmployeePay struct {
	Employee    Employee   `json:"employee"`
	EmployeeKey string     `json:"employeeKey"`
	Pay         *PayDetail `json:"pay"`
}
