package authz

import "github.com/taskboard/server/internal/model"

// Role permission templates. Hand-authored constants; membership lifecycle
// code snapshots these at add/role-change time.
var (
	ownerTemplate = model.PermissionSet{
		CanCreateTasks:    true,
		CanEditTasks:      true,
		CanDeleteTasks:    true,
		CanManageMembers:  true,
		CanManageSettings: true,
		CanViewReports:    true,
		CanExportData:     true,
	}

	adminTemplate = model.PermissionSet{
		CanCreateTasks:   true,
		CanEditTasks:     true,
		CanDeleteTasks:   true,
		CanManageMembers: true,
		CanViewReports:   true,
		CanExportData:    true,
	}

	memberTemplate = model.PermissionSet{
		CanCreateTasks: true,
		CanEditTasks:   true,
		CanViewReports: true,
	}

	viewerTemplate = model.PermissionSet{
		CanViewReports: true,
	}
)

// TemplateFor returns the default permission set for a role. Unknown roles
// map to the viewer template: an unrecognized role must never grant more
// than the most restrictive one.
func TemplateFor(role model.Role) model.PermissionSet {
	switch role {
	case model.RoleOwner:
		return ownerTemplate
	case model.RoleAdmin:
		return adminTemplate
	case model.RoleMember:
		return memberTemplate
	case model.RoleViewer:
		return viewerTemplate
	default:
		return viewerTemplate
	}
}
