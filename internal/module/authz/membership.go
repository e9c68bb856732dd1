package authz

import (
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
)

// Resolution is a user's effective standing in one workspace. Found is
// false when the user has no active membership and is not the owner; that
// is a normal outcome, not an error, and callers must treat it as zero
// capabilities.
type Resolution struct {
	Role        model.Role
	Permissions model.PermissionSet
	Found       bool
}

// ResolveMembership computes the effective role and permission set of a
// user in a workspace.
//
// The owner check comes first and bypasses the members list entirely, so
// owner access cannot be weakened by a missing or contradictory member
// entry. For everyone else, only a membership with active status counts;
// pending and suspended members resolve exactly like users who were never
// added. A found membership returns its stored permission set verbatim —
// the set is a snapshot taken from the role template at add or role-change
// time and is deliberately not re-derived here.
func ResolveMembership(ws *model.Workspace, userID uuid.UUID) Resolution {
	if ws.IsOwner(userID) {
		return Resolution{
			Role:        model.RoleOwner,
			Permissions: TemplateFor(model.RoleOwner),
			Found:       true,
		}
	}

	for i := range ws.Members {
		m := &ws.Members[i]
		if m.UserID == userID && m.IsActive() {
			return Resolution{
				Role:        m.Role,
				Permissions: m.Permissions,
				Found:       true,
			}
		}
	}

	return Resolution{}
}
