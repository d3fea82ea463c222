// Package access defines roles, permissions and routes, and answers every
// capability question from one table.
//
// Each role lists its permissions explicitly; there is no inheritance between
// roles. Route access is not tabulated separately: a route names the
// permissions that unlock it and a role reaches the route when it holds any of
// them, so the two checks cannot drift apart.
package access

import "strings"

// Role is an enumerated user category.
type Role string

const (
	RoleSuperUser       Role = "super_user"
	RoleAdmin           Role = "admin"
	RoleCEO             Role = "ceo"
	RoleHead            Role = "head"
	RoleAccountant      Role = "accountant"
	RoleCustomerSupport Role = "customer_support"
	RoleReceptionist    Role = "receptionist"
	RoleInstructor      Role = "instructor"
	RoleCounselor       Role = "counselor"
	RoleEmployee        Role = "employee"
)

// Permission is a named action a role may perform.
type Permission string

const (
	PermViewDashboard      Permission = "view_dashboard"
	PermViewStudents       Permission = "view_students"
	PermManageStudents     Permission = "manage_students"
	PermEditStudents       Permission = "edit_students"
	PermDeleteStudents     Permission = "delete_students"
	PermViewEmployees      Permission = "view_employees"
	PermManageEmployees    Permission = "manage_employees"
	PermEditEmployees      Permission = "edit_employees"
	PermDeleteEmployees    Permission = "delete_employees"
	PermViewUniversities   Permission = "view_universities"
	PermManageUniversities Permission = "manage_universities"
	PermEditUniversities   Permission = "edit_universities"
	PermDeleteUniversities Permission = "delete_universities"
	PermViewApplications   Permission = "view_applications"
	PermManageApplications Permission = "manage_applications"
	PermEditApplications   Permission = "edit_applications"
	PermDeleteApplications Permission = "delete_applications"
	PermViewReports        Permission = "view_reports"
	PermManageSystem       Permission = "manage_system"
	PermViewFinance        Permission = "view_finance"
	PermManageFinance      Permission = "manage_finance"
	PermManagePayroll      Permission = "manage_payroll"
	PermApprovePayroll     Permission = "approve_payroll"
	PermAssignSupport      Permission = "assign_support"
	PermWalkIn             Permission = "walk_in"
	PermInstructorUpdates  Permission = "instructor_updates"
	PermViewAudit          Permission = "view_audit"
)

// Route is a named navigation target of the view layer.
type Route string

const (
	RouteDashboard    Route = "dashboard"
	RouteStudents     Route = "students"
	RouteApplications Route = "applications"
	RouteUniversities Route = "universities"
	RouteEmployees    Route = "employees"
	RouteReports      Route = "reports"
	RouteFinance      Route = "finance"
	RoutePayDetails   Route = "pay_details"
	RoutePaysheets    Route = "paysheets"
	RouteAssignments  Route = "assignments"
	RouteInstructor   Route = "instructor"
	RouteWalkIn       Route = "walk_in"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleSuperUser, RoleAdmin, RoleCEO, RoleHead, RoleAccountant,
	RoleCustomerSupport, RoleReceptionist, RoleInstructor, RoleCounselor, RoleEmployee,
}

// AllPermissions lists every permission.
var AllPermissions = []Permission{
	PermViewDashboard,
	PermViewStudents, PermManageStudents, PermEditStudents, PermDeleteStudents,
	PermViewEmployees, PermManageEmployees, PermEditEmployees, PermDeleteEmployees,
	PermViewUniversities, PermManageUniversities, PermEditUniversities, PermDeleteUniversities,
	PermViewApplications, PermManageApplications, PermEditApplications, PermDeleteApplications,
	PermViewReports, PermManageSystem,
	PermViewFinance, PermManageFinance, PermManagePayroll, PermApprovePayroll,
	PermAssignSupport, PermWalkIn, PermInstructorUpdates, PermViewAudit,
}

// Routes lists every route in navigation order.
var Routes = []Route{
	RouteDashboard, RouteStudents, RouteApplications, RouteUniversities, RouteEmployees, RouteReports,
	RouteFinance, RoutePayDetails, RoutePaysheets, RouteAssignments, RouteInstructor, RouteWalkIn,
}

var capabilities = map[Role][]Permission{
	RoleSuperUser: AllPermissions,
	RoleAdmin: {
		PermViewDashboard,
		PermViewStudents, PermManageStudents, PermEditStudents, PermDeleteStudents,
		PermViewEmployees, PermManageEmployees, PermEditEmployees, PermDeleteEmployees,
		PermViewUniversities, PermManageUniversities, PermEditUniversities, PermDeleteUniversities,
		PermViewApplications, PermManageApplications, PermEditApplications, PermDeleteApplications,
		PermViewReports, PermManageSystem,
		PermViewFinance, PermManageFinance, PermManagePayroll,
		PermAssignSupport, PermWalkIn, PermViewAudit,
	},
	RoleCEO: {
		PermViewDashboard, PermViewStudents, PermViewEmployees, PermViewUniversities, PermViewApplications,
		PermViewReports, PermViewFinance, PermApprovePayroll, PermViewAudit,
	},
	RoleHead: {
		PermViewDashboard,
		PermViewStudents, PermManageStudents, PermEditStudents,
		PermViewApplications, PermManageApplications, PermEditApplications,
		PermViewUniversities, PermViewEmployees, PermViewReports,
		PermAssignSupport, PermViewAudit,
	},
	RoleAccountant: {
		PermViewDashboard, PermViewStudents, PermViewEmployees, PermViewReports,
		PermViewFinance, PermManageFinance, PermManagePayroll,
	},
	RoleCustomerSupport: {
		PermViewDashboard, PermViewStudents, PermEditStudents, PermViewApplications, PermWalkIn,
	},
	RoleReceptionist: {
		PermViewDashboard, PermViewStudents, PermWalkIn,
	},
	RoleInstructor: {
		PermViewDashboard, PermViewStudents, PermInstructorUpdates,
	},
	RoleCounselor: {
		PermViewDashboard, PermManageStudents, PermEditStudents,
		PermManageApplications, PermEditApplications, PermViewUniversities, PermViewReports,
	},
	RoleEmployee: {
		PermViewDashboard, PermViewStudents, PermViewApplications, PermViewUniversities, PermViewReports,
	},
}

// routeRequirements maps each route to the permissions that unlock it.
var routeRequirements = map[Route][]Permission{
	RouteDashboard:    {PermViewDashboard},
	RouteStudents:     {PermViewStudents, PermManageStudents},
	RouteApplications: {PermViewApplications, PermManageApplications},
	RouteUniversities: {PermViewUniversities, PermManageUniversities},
	RouteEmployees:    {PermViewEmployees, PermManageEmployees},
	RouteReports:      {PermViewReports},
	RouteFinance:      {PermViewFinance, PermManageFinance},
	RoutePayDetails:   {PermManagePayroll},
	RoutePaysheets:    {PermManagePayroll, PermApprovePayroll},
	RouteAssignments:  {PermAssignSupport},
	RouteInstructor:   {PermInstructorUpdates},
	RouteWalkIn:       {PermWalkIn},
}

var displayNames = map[Role]string{
	RoleSuperUser:       "Super User",
	RoleAdmin:           "Administrator",
	RoleCEO:             "CEO",
	RoleHead:            "Head of Operations",
	RoleAccountant:      "Accountant",
	RoleCustomerSupport: "Customer Support",
	RoleReceptionist:    "Receptionist",
	RoleInstructor:      "Instructor",
	RoleCounselor:       "Counselor",
	RoleEmployee:        "Employee",
}

var permissionSets = buildPermissionSets()

func buildPermissionSets() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(capabilities))
	for role, perms := range capabilities {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// ParseRole normalises raw input into a defined role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// HasPermission reports whether role holds permission. Unknown roles hold nothing.
func HasPermission(role Role, permission Permission) bool {
	_, ok := permissionSets[role][permission]
	return ok
}

// CanAccessRoute reports whether role may navigate to route.
func CanAccessRoute(role Role, route Route) bool {
	for _, p := range routeRequirements[route] {
		if HasPermission(role, p) {
			return true
		}
	}
	return false
}

// Permissions returns a copy of the role's permission list.
func Permissions(role Role) []Permission {
	return append([]Permission(nil), capabilities[role]...)
}

// AccessibleRoutes returns the routes role may reach, in navigation order.
func AccessibleRoutes(role Role) []Route {
	routes := make([]Route, 0, len(Routes))
	for _, r := range Routes {
		if CanAccessRoute(role, r) {
			routes = append(routes, r)
		}
	}
	return routes
}

// RouteRequirements returns the permissions that unlock route.
func RouteRequirements(route Route) []Permission {
	return append([]Permission(nil), routeRequirements[route]...)
}

// DisplayName returns the human label for role, or the raw value when unknown.
func DisplayName(role Role) string {
	if name, ok := displayNames[role]; ok {
		return name
	}
	return string(role)
}
