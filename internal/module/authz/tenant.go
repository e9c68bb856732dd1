package authz

import (
	"github.com/google/uuid"

	"github.com/taskboard/server/internal/model"
)

// VerifyTenant reports whether the resource belongs to the workspace
// declared in the request context.
//
// This is a second, independent check after Authorize: a user can hold
// legitimate rights to a resource in some workspace, yet address it under a
// different workspace context. A mismatch is always a hard denial and is
// logged at elevated severity as a potential cross-tenant probe.
func VerifyTenant(res model.Resource, contextWorkspaceID uuid.UUID) bool {
	return res.ResourceWorkspace() == contextWorkspaceID
}
