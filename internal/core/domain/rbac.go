package domain

// Permission is a named capability a role may or may not hold. The catalog is
// closed: checks against names outside it simply come back false.
type Permission string

const (
	PermissionManageUsers       Permission = "manage_users"
	PermissionManageTeams       Permission = "manage_teams"
	PermissionManageBilling     Permission = "manage_billing"
	PermissionManageInspections Permission = "manage_inspections"
	PermissionCreateInspection  Permission = "create_inspection"
	PermissionEditInspection    Permission = "edit_inspection"
	PermissionDeleteInspection  Permission = "delete_inspection"
	PermissionAssignInspection  Permission = "assign_inspection"
	PermissionViewReports       Permission = "view_reports"
	PermissionExportReports     Permission = "export_reports"
	PermissionManageTemplates   Permission = "manage_templates"
	PermissionViewDashboard     Permission = "view_dashboard"
)

// rolePermissions is the static role→permission-set table. The mapping is
// total: every supported role has a fixed, non-empty entry.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionManageUsers,
		PermissionManageTeams,
		PermissionManageBilling,
		PermissionManageInspections,
		PermissionCreateInspection,
		PermissionEditInspection,
		PermissionDeleteInspection,
		PermissionAssignInspection,
		PermissionViewReports,
		PermissionExportReports,
		PermissionManageTemplates,
		PermissionViewDashboard,
	},
	RoleManager: {
		PermissionManageInspections,
		PermissionCreateInspection,
		PermissionEditInspection,
		PermissionAssignInspection,
		PermissionViewReports,
		PermissionExportReports,
		PermissionManageTemplates,
		PermissionViewDashboard,
	},
	RoleInspector: {
		PermissionCreateInspection,
		PermissionEditInspection,
		PermissionViewReports,
		PermissionViewDashboard,
	},
}

// PermissionsForRole returns a copy of the role's static permission set.
// Unknown roles have no permissions.
func PermissionsForRole(role Role) []Permission {
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether the role's static set contains p.
func RoleHasPermission(role Role, p Permission) bool {
	for _, candidate := range rolePermissions[role] {
		if candidate == p {
			return true
		}
	}
	return false
}

// Roles lists every role present in the permission table.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleInspector}
}
