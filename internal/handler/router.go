package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/overseas-crm/internal/access"
	"github.com/noah-isme/overseas-crm/internal/middleware"
)

// Handlers groups the view layer endpoints mounted by RegisterRoutes.
type Handlers struct {
	Auth         *AuthHandler
	Users        *UserHandler
	Students     *StudentHandler
	Applications *ApplicationHandler
	Universities *UniversityHandler
	Employees    *EmployeeHandler
	Finance      *FinanceHandler
	Payroll      *PayrollHandler
	Audit        *AuditHandler
	Dashboard    *DashboardHandler
	Exports      *ExportHandler
	System       *SystemHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts every endpoint under prefix. Everything except login,
// health and signed downloads requires a session, and each group is gated on
// the permissions its screen needs.
func RegisterRoutes(r *gin.Engine, prefix string, auth middleware.SessionAuthenticator, h Handlers) {
	perm := middleware.RequirePermission

	r.GET("/health", h.Metrics.Health)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	api.POST("/auth/login", h.Auth.Login)
	api.GET("/exports/download/:token", h.Exports.Download)

	secured := api.Group("")
	secured.Use(middleware.Session(auth))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)
	secured.PUT("/auth/profile", h.Auth.UpdateProfile)

	secured.GET("/users/support-agents", perm(access.PermAssignSupport, access.PermWalkIn), h.Users.SupportAgents)
	users := secured.Group("/users", perm(access.PermManageSystem))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	students := secured.Group("/students")
	students.GET("", perm(access.PermViewStudents, access.PermManageStudents), h.Students.List)
	students.POST("", perm(access.PermManageStudents), h.Students.Create)
	students.POST("/walk-in", perm(access.PermWalkIn), h.Students.WalkIn)
	students.GET("/:id", perm(access.PermViewStudents, access.PermManageStudents), h.Students.Get)
	students.PUT("/:id", perm(access.PermEditStudents), h.Students.Update)
	students.DELETE("/:id", perm(access.PermDeleteStudents), h.Students.Delete)
	students.POST("/:id/remarks", perm(access.PermEditStudents), h.Students.AddRemark)
	students.PUT("/:id/support", perm(access.PermAssignSupport), h.Students.AssignSupport)
	students.PUT("/:id/instructor-status", perm(access.PermInstructorUpdates), h.Students.SetInstructorStatus)

	applications := secured.Group("/applications")
	applications.GET("", perm(access.PermViewApplications, access.PermManageApplications), h.Applications.List)
	applications.POST("", perm(access.PermManageApplications), h.Applications.Create)
	applications.GET("/:id", perm(access.PermViewApplications, access.PermManageApplications), h.Applications.Get)
	applications.PUT("/:id", perm(access.PermEditApplications), h.Applications.Update)
	applications.DELETE("/:id", perm(access.PermDeleteApplications), h.Applications.Delete)

	universities := secured.Group("/universities")
	universities.GET("", perm(access.PermViewUniversities, access.PermManageUniversities), h.Universities.List)
	universities.POST("", perm(access.PermManageUniversities), h.Universities.Create)
	universities.GET("/:id", perm(access.PermViewUniversities, access.PermManageUniversities), h.Universities.Get)
	universities.PUT("/:id", perm(access.PermEditUniversities), h.Universities.Update)
	universities.DELETE("/:id", perm(access.PermDeleteUniversities), h.Universities.Delete)

	employees := secured.Group("/employees")
	employees.GET("", perm(access.PermViewEmployees, access.PermManageEmployees), h.Employees.List)
	employees.POST("", perm(access.PermManageEmployees), h.Employees.Create)
	employees.GET("/:id", perm(access.PermViewEmployees, access.PermManageEmployees), h.Employees.Get)
	employees.PUT("/:id", perm(access.PermEditEmployees), h.Employees.Update)
	employees.DELETE("/:id", perm(access.PermDeleteEmployees), h.Employees.Delete)

	finance := secured.Group("/finance", middleware.RequireRoute(access.RouteFinance))
	finance.GET("/overview", perm(access.PermViewFinance), h.Finance.Overview)
	finance.GET("/students/:studentId/payments", perm(access.PermViewFinance), h.Finance.ListPayments)
	finance.POST("/students/:studentId/payments", perm(access.PermManageFinance), h.Finance.AddDue)
	finance.POST("/students/:studentId/payments/:paymentId/paid", perm(access.PermManageFinance), h.Finance.MarkPaid)

	payroll := secured.Group("/payroll")
	payDetails := payroll.Group("/pay-details", middleware.RequireRoute(access.RoutePayDetails))
	payDetails.GET("", h.Payroll.PayDetails)
	payDetails.PUT("/:employeeKey", h.Payroll.UpsertPayDetail)
	paysheets := payroll.Group("/paysheets", middleware.RequireRoute(access.RoutePaysheets))
	paysheets.GET("", h.Payroll.PaySheets)
	paysheets.POST("", perm(access.PermManagePayroll), h.Payroll.Generate)
	paysheets.GET("/:id", h.Payroll.PaySheet)
	paysheets.POST("/:id/approve", perm(access.PermApprovePayroll), h.Payroll.Approve)
	paysheets.POST("/:id/revert", perm(access.PermApprovePayroll), h.Payroll.Revert)

	secured.GET("/audit", perm(access.PermViewAudit), h.Audit.List)
	secured.GET("/dashboard", perm(access.PermViewDashboard), h.Dashboard.Dashboard)
	secured.GET("/reports", perm(access.PermViewReports), h.Dashboard.Report)

	secured.POST("/exports/paysheets/:id", perm(access.PermManagePayroll, access.PermApprovePayroll), h.Exports.PaySheet)
	secured.POST("/exports/audit", perm(access.PermViewAudit), h.Exports.AuditLog)

	system := secured.Group("/system", perm(access.PermManageSystem))
	system.GET("/metrics", h.Metrics.Summary)
	system.POST("/reset", h.System.Reset)
}
