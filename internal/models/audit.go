package models

import (
	"time"

	"github.com/noah-isme/overseas-crm/internal/access"
)

// Audit actions recorded by the services.
const (
	AuditActionLogin            = "login"
	AuditActionLogout           = "logout"
	AuditActionProfileUpdate    = "profile_update"
	AuditActionUserCreate       = "user_create"
	AuditActionUserUpdate       = "user_update"
	AuditActionUserDelete       = "user_delete"
	AuditActionStudentCreate    = "student_create"
	AuditActionStudentUpdate    = "student_update"
	AuditActionStudentDelete    = "student_delete"
	AuditActionStudentRemark    = "student_remark"
	AuditActionWalkIn           = "walk_in_add"
	AuditActionAssignSupport    = "assign_support"
	AuditActionInstructorStatus = "instructor_status"
	AuditActionFinanceAddDue    = "finance_add_due"
	AuditActionFinanceMarkPaid  = "finance_mark_paid"
	AuditActionPayDetailUpsert  = "pay_detail_upsert"
	AuditActionPaysheetGenerate = "paysheet_generate"
	AuditActionPaysheetApprove  = "paysheet_approve"
	AuditActionPaysheetRevert   = "paysheet_revert"
	AuditActionSystemReset      = "system_reset"
)

// Actor identifies who performed an audited action.
type Actor struct {
	ID   string
	Name string
	Role access.Role
}

// AuditEntry is one append-only audit trail record.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	ActorID   string                 `json:"actorId"`
	ActorName string                 `json:"actorName"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	Action  string
	ActorID string
	Limit   int
}
