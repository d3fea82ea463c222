package models

import "time"

// Funnel statuses used for coarse counting. Status is otherwise free-form.
const (
	StudentStatusInquiry      = "Inquiry"
	StudentStatusVisaApproved = "Visa Approved"
	StudentStatusEnrolled     = "Enrolled"

	StudentPriorityMedium = "Medium"

	InstructorStatusSent      = "sent"
	InstructorStatusCancelled = "cancelled"
)

// RemarkEntry is one note in a student's append-only remark history.
type RemarkEntry struct {
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	Remark   string    `json:"remark"`
	Date     time.Time `json:"date"`
}

// Student is a prospective or enrolled client of the consultancy.
type Student struct {
	ID                  string        `json:"id"`
	FirstName           string        `json:"firstName,omitempty"`
	LastName            string        `json:"lastName,omitempty"`
	FullName            string        `json:"fullName"`
	Email               string        `json:"email,omitempty"`
	Phone               string        `json:"phone,omitempty"`
	Status              string        `json:"status"`
	Priority            string        `json:"priority,omitempty"`
	Destination         string        `json:"destination,omitempty"`
	PreferredProgram    string        `json:"preferredProgram,omitempty"`
	PreferredUniversity string        `json:"preferredUniversity,omitempty"`
	CounselorID         string        `json:"counselorId,omitempty"`
	SupportAssigneeID   string        `json:"supportAssigneeId,omitempty"`
	AssignedCounselor   string        `json:"assignedCounselor,omitempty"`
	InstructorStatus    string        `json:"instructorStatus,omitempty"`
	RemarkHistory       []RemarkEntry `json:"remarkHistory"`
	JoinDate            string        `json:"joinDate,omitempty"`
	LastActivity        string        `json:"lastActivity,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search      string
	Status      string
	CounselorID string
	Page        int
	PageSize    int
}
