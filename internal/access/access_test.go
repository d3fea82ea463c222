package access

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referencePermissions is maintained by hand, independently of the capability table.
var referencePermissions = map[Role]string{
	RoleSuperUser: "view_dashboard view_students manage_students edit_students delete_students " +
		"view_employees manage_employees edit_employees delete_employees " +
		"view_universities manage_universities edit_universities delete_universities " +
		"view_applications manage_applications edit_applications delete_applications " +
		"view_reports manage_system view_finance manage_finance manage_payroll approve_payroll " +
		"assign_support walk_in instructor_updates view_audit",
	RoleAdmin: "view_dashboard view_students manage_students edit_students delete_students " +
		"view_employees manage_employees edit_employees delete_employees " +
		"view_universities manage_universities edit_universities delete_universities " +
		"view_applications manage_applications edit_applications delete_applications " +
		"view_reports manage_system view_finance manage_finance manage_payroll " +
		"assign_support walk_in view_audit",
	RoleCEO: "view_dashboard view_students view_employees view_universities view_applications " +
		"view_reports view_finance approve_payroll view_audit",
	RoleHead: "view_dashboard view_students manage_students edit_students " +
		"view_applications manage_applications edit_applications view_universities view_employees " +
		"view_reports assign_support view_audit",
	RoleAccountant:      "view_dashboard view_students view_employees view_reports view_finance manage_finance manage_payroll",
	RoleCustomerSupport: "view_dashboard view_students edit_students view_applications walk_in",
	RoleReceptionist:    "view_dashboard view_students walk_in",
	RoleInstructor:      "view_dashboard view_students instructor_updates",
	RoleCounselor: "view_dashboard manage_students edit_students manage_applications edit_applications " +
		"view_universities view_reports",
	RoleEmployee: "view_dashboard view_students view_applications view_universities view_reports",
}

var referenceRoutes = map[Role]string{
	RoleSuperUser:       "dashboard students applications universities employees reports finance pay_details paysheets assignments instructor walk_in",
	RoleAdmin:           "dashboard students applications universities employees reports finance pay_details paysheets assignments walk_in",
	RoleCEO:             "dashboard students applications universities employees reports finance paysheets",
	RoleHead:            "dashboard students applications universities employees reports assignments",
	RoleAccountant:      "dashboard students employees reports finance pay_details paysheets",
	RoleCustomerSupport: "dashboard students applications walk_in",
	RoleReceptionist:    "dashboard students walk_in",
	RoleInstructor:      "dashboard students instructor",
	RoleCounselor:       "dashboard students applications universities reports",
	RoleEmployee:        "dashboard students applications universities reports",
}

func set(words string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		out[w] = true
	}
	return out
}

func TestHasPermissionMatchesReference(t *testing.T) {
	require.Len(t, Roles, 10)
	for _, role := range Roles {
		expected := set(referencePermissions[role])
		for _, perm := range AllPermissions {
			assert.Equalf(t, expected[string(perm)], HasPermission(role, perm), "role=%s permission=%s", role, perm)
		}
	}
}

func TestCanAccessRouteMatchesReference(t *testing.T) {
	require.Len(t, Routes, 12)
	for _, role := range Roles {
		expected := set(referenceRoutes[role])
		for _, route := range Routes {
			assert.Equalf(t, expected[string(route)], CanAccessRoute(role, route), "role=%s route=%s", role, route)
		}
	}
}

func TestRouteAccessFollowsPermissions(t *testing.T) {
	for _, role := range Roles {
		for _, route := range Routes {
			unlocked := false
			for _, p := range RouteRequirements(route) {
				unlocked = unlocked || HasPermission(role, p)
			}
			assert.Equal(t, unlocked, CanAccessRoute(role, route))
		}
	}
}

func TestPermissionSetsAreDistinct(t *testing.T) {
	seen := make(map[string]Role)
	for _, role := range Roles {
		key := strings.Join(strings.Fields(referencePermissions[role]), ",")
		other, dup := seen[key]
		assert.Falsef(t, dup, "%s and %s share a permission set", role, other)
		seen[key] = role
	}
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	assert.False(t, HasPermission("guest", PermViewDashboard))
	assert.False(t, CanAccessRoute("guest", RouteDashboard))
	assert.False(t, CanAccessRoute(RoleAdmin, "settings"))
	assert.Empty(t, AccessibleRoutes("guest"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Administrator", DisplayName(RoleAdmin))
	assert.Equal(t, "Customer Support", DisplayName(RoleCustomerSupport))
	assert.Equal(t, "intern", DisplayName("intern"))
	for _, role := range Roles {
		assert.NotEqual(t, string(role), DisplayName(role))
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Counselor ")
	assert.True(t, ok)
	assert.Equal(t, RoleCounselor, r)
	_, ok = ParseRole("dean")
	assert.False(t, ok)
}

func TestPermissionsReturnsCopy(t *testing.T) {
	perms := Permissions(RoleReceptionist)
	perms[0] = PermManageSystem
	assert.False(t, HasPermission(RoleReceptionist, PermManageSystem))
	assert.Equal(t, PermViewDashboard, Permissions(RoleReceptionist)[0])
}
