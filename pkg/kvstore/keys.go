package kvstore

// Storage keys. Each repository owns exactly one of these; no two repositories
// write the same key.
const (
	KeyUsers         = "overseas_users"
	KeyStudents      = "overseas_students"
	KeyUniversities  = "overseas_universities"
	KeyApplications  = "overseas_applications"
	KeyEmployees     = "overseas_employees"
	KeyCurrentUser   = "overseas_current_user"
	KeyInitialized   = "overseas_initialized"
	KeySchemaVersion = "overseas_schema_version"
	KeyPayDetails    = "overseas_pay_details"
	KeyPaySheets     = "overseas_pay_sheets"
	KeyPayments      = "overseas_payments"
	KeyAuditLogs     = "overseas_audit_logs"
)

// AllKeys lists every key the application persists.
var AllKeys = []string{
	KeyUsers,
	KeyStudents,
	KeyUniversities,
	KeyApplications,
	KeyEmployees,
	KeyCurrentUser,
	KeyInitialized,
	KeySchemaVersion,
	KeyPayDetails,
	KeyPaySheets,
	KeyPayments,
	KeyAuditLogs,
}
