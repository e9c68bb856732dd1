package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/taskboard/server/internal/model"
)

func TestResolveMembership(t *testing.T) {
	ownerID := uuid.New()
	memberID := uuid.New()
	strangerID := uuid.New()

	newWorkspace := func(members ...model.Membership) *model.Workspace {
		return &model.Workspace{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Name:    "acme",
			Members: members,
		}
	}

	t.Run("owner resolves without a member entry", func(t *testing.T) {
		res := ResolveMembership(newWorkspace(), ownerID)
		assert.True(t, res.Found)
		assert.Equal(t, model.RoleOwner, res.Role)
		assert.Equal(t, TemplateFor(model.RoleOwner), res.Permissions)
	})

	t.Run("owner bypass wins over a contradictory member entry", func(t *testing.T) {
		ws := newWorkspace(model.Membership{
			UserID:      ownerID,
			Role:        model.RoleViewer,
			Permissions: TemplateFor(model.RoleViewer),
			Status:      model.MemberStatusSuspended,
		})

		res := ResolveMembership(ws, ownerID)
		assert.True(t, res.Found)
		assert.Equal(t, model.RoleOwner, res.Role)
		assert.True(t, res.Permissions.Has(model.CapabilityManageSettings))
	})

	t.Run("active member returns the stored set verbatim", func(t *testing.T) {
		// Stored set deliberately diverges from the member template.
		stored := model.PermissionSet{CanCreateTasks: true, CanDeleteTasks: true}
		ws := newWorkspace(model.Membership{
			UserID:      memberID,
			Role:        model.RoleMember,
			Permissions: stored,
			Status:      model.MemberStatusActive,
		})

		res := ResolveMembership(ws, memberID)
		assert.True(t, res.Found)
		assert.Equal(t, model.RoleMember, res.Role)
		assert.Equal(t, stored, res.Permissions)
		assert.False(t, res.Permissions.Has(model.CapabilityEditTasks))
	})

	t.Run("pending member resolves like a stranger", func(t *testing.T) {
		ws := newWorkspace(model.Membership{
			UserID:      memberID,
			Role:        model.RoleAdmin,
			Permissions: TemplateFor(model.RoleAdmin),
			Status:      model.MemberStatusPending,
		})

		res := ResolveMembership(ws, memberID)
		assert.False(t, res.Found)
		assert.Equal(t, model.PermissionSet{}, res.Permissions)
	})

	t.Run("suspended member resolves like a stranger", func(t *testing.T) {
		ws := newWorkspace(model.Membership{
			UserID:      memberID,
			Role:        model.RoleAdmin,
			Permissions: TemplateFor(model.RoleAdmin),
			Status:      model.MemberStatusSuspended,
		})

		assert.False(t, ResolveMembership(ws, memberID).Found)
	})

	t.Run("non-member resolves to zero capabilities", func(t *testing.T) {
		res := ResolveMembership(newWorkspace(), strangerID)
		assert.False(t, res.Found)
		for c := model.CapabilityCreateTasks; c <= model.CapabilityDeleteFile; c++ {
			assert.False(t, res.Permissions.Has(c), c.String())
		}
	})
}
